package portal

import "fmt"

// Section is a block of the SII MIPE transport-guide form.
type Section string

const (
	SectionLogin    Section = "login"
	SectionEmitter  Section = "emitter"
	SectionReceiver Section = "receiver"
	SectionVehicle  Section = "vehicle"
	SectionDetail   Section = "detail"
	SectionTotals   Section = "totals"
	SectionPreview  Section = "preview"
	SectionSign     Section = "sign"
	SectionDownload Section = "download"
)

// Field names a control inside a Section.
type Field string

const (
	FieldUser     Field = "user"
	FieldPassword Field = "password"
	FieldSubmit   Field = "submit"

	FieldSaleIndicator Field = "sale_indicator"
	FieldOriginCity    Field = "origin_city"
	FieldDay           Field = "day"
	FieldMonth         Field = "month"

	FieldNationalID Field = "national_id"
	FieldCity       Field = "city"
	FieldGiro       Field = "giro"
	FieldNotes      Field = "notes"

	FieldHaulerID Field = "hauler_id"

	FieldRow         Field = "row"
	FieldName        Field = "name"
	FieldExtended    Field = "extended"
	FieldDescription Field = "description"
	FieldQuantity    Field = "quantity"
	FieldUnit        Field = "unit"
	FieldPrice       Field = "price"
	FieldAddLine     Field = "add_line"

	FieldNet Field = "net"

	FieldUpdate Field = "update"
	FieldToSign Field = "to_sign"

	FieldPassphrase Field = "passphrase"
	FieldSign       Field = "sign"

	FieldLink Field = "link"
)

// FieldLocator addresses one control of the portal form. Row is 1-based and
// only meaningful for per-row detail fields.
type FieldLocator struct {
	Section Section
	Row     int
	Field   Field
}

// At returns the locator of a non-row field.
func At(section Section, field Field) FieldLocator {
	return FieldLocator{Section: section, Field: field}
}

// Row returns the locator of a detail row field.
func Row(row int, field Field) FieldLocator {
	return FieldLocator{Section: SectionDetail, Row: row, Field: field}
}

type locatorKey struct {
	section Section
	field   Field
}

// selectors is the single table of portal-specific addresses. Row entries are
// format strings taking the two-digit row number.
var selectors = map[locatorKey]string{
	{SectionLogin, FieldUser}:     `#rutcntr`,
	{SectionLogin, FieldPassword}: `#clave`,
	{SectionLogin, FieldSubmit}:   `#bt_ingresar`,

	{SectionEmitter, FieldSaleIndicator}: `#collapseEMISOR select[name="EFXP_IND_VENTA"]`,
	{SectionEmitter, FieldOriginCity}:    `#collapseEMISOR input[name="EFXP_CIUDAD_ORIGEN"]`,
	{SectionEmitter, FieldDay}:           `#collapseEMISOR select[name="cbo_dia_boleta"]`,
	{SectionEmitter, FieldMonth}:         `#collapseEMISOR select[name="cbo_mes_boleta"]`,

	{SectionReceiver, FieldNationalID}: `#collapseRECEPTOR input[name="EFXP_RUT_RECEP"]`,
	{SectionReceiver, FieldCity}:       `#collapseRECEPTOR input[name="EFXP_CIUDAD_RECEP"]`,
	{SectionReceiver, FieldGiro}:       `#collapseRECEPTOR select[name="EFXP_GIRO_RECEP"]`,
	// Without a transport block the extra lines go into the receiver city box.
	{SectionReceiver, FieldNotes}: `#collapseRECEPTOR input[name="EFXP_CIUDAD_RECEP"]`,

	{SectionVehicle, FieldHaulerID}: `#EFXP_RUT_TRANSPORTE`,

	{SectionDetail, FieldRow}:         `#rowDet_%02d`,
	{SectionDetail, FieldName}:        `#myTable input[name="EFXP_NMB_%02d"]`,
	{SectionDetail, FieldExtended}:    `#myTable input[name="DESCRIP_%02d"]`,
	{SectionDetail, FieldDescription}: `#rowDescripcion_%02d textarea`,
	{SectionDetail, FieldQuantity}:    `#myTable input[name="EFXP_QTY_%02d"]`,
	{SectionDetail, FieldUnit}:        `#myTable input[name="EFXP_UNMD_%02d"]`,
	{SectionDetail, FieldPrice}:       `#myTable input[name="EFXP_PRC_%02d"]`,
	{SectionDetail, FieldAddLine}:     `#rowDet_Botones input[name="AGREGA_DETALLE"]`,

	{SectionTotals, FieldNet}: `input[name="EFXP_MNT_NETO"]`,

	{SectionPreview, FieldUpdate}: `button[name="Button_Update"]`,
	{SectionPreview, FieldToSign}: `input.btn.btn-default[name="btnSign"]`,

	{SectionSign, FieldPassphrase}: `#myPass`,
	{SectionSign, FieldSign}:       `#btnFirma`,

	{SectionDownload, FieldLink}: `div.web-sii.cuerpo a.btn.btn-default[target="_blank"]`,
}

// Selector returns the CSS selector for the locator. It panics on a locator
// that is not in the table, which is a programming error.
func (l FieldLocator) Selector() string {
	pattern, ok := selectors[locatorKey{l.Section, l.Field}]
	if !ok {
		panic(fmt.Sprintf("portal: no selector for %s/%s", l.Section, l.Field))
	}
	if l.Section == SectionDetail && l.Field != FieldAddLine {
		return fmt.Sprintf(pattern, l.Row)
	}
	return pattern
}

func (l FieldLocator) String() string {
	if l.Row > 0 {
		return fmt.Sprintf("%s[%d].%s", l.Section, l.Row, l.Field)
	}
	return fmt.Sprintf("%s.%s", l.Section, l.Field)
}
