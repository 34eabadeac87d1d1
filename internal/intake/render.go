package intake

import (
	"fmt"
	"strings"

	"dtefiler/internal/assembler"
	"dtefiler/internal/records"
)

// RenderWeighing formats the weighing review panel.
func RenderWeighing(w records.WeighingRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Numero:  %d\n", w.ID)
	fmt.Fprintf(&b, "Estado:  %s\n", w.Status)
	fmt.Fprintf(&b, "Ciclo:   %s\n", w.Cycle)
	fmt.Fprintf(&b, "Patente: %s\n", w.Plate)
	fmt.Fprintf(&b, "Chofer:  %s (%s)\n", w.Driver.Name, w.Driver.NationalID)
	if w.Hauler != nil {
		fmt.Fprintf(&b, "Transportista: %s (%s)\n", w.Hauler.Name, w.Hauler.NationalID)
	}
	return b.String()
}

// RenderDocuments lists the documents of a weighing, one per line.
func RenderDocuments(docs []records.DocumentRecord) string {
	var b strings.Builder
	for _, d := range docs {
		total := "0"
		if d.DeclaredTotal != nil {
			total = records.FormatAmount(*d.DeclaredTotal)
		}
		fmt.Fprintf(&b, "%d) Doc %d  %s  %s -> %s (%s)  $%s\n",
			d.Line, d.ID, d.Date.Format("02-01-2006"),
			d.Internal.Name, d.Destination.Name, d.Destination.NationalID, total)
	}
	return b.String()
}

// RenderDocument formats the document review panel.
func RenderDocument(p *assembler.SubmissionPayload) string {
	d := p.Document
	var b strings.Builder
	fmt.Fprintf(&b, "Documento: %d (linea %d)\n", d.ID, d.Line)
	fmt.Fprintf(&b, "Fecha:     %s\n", d.Date.Format("02-01-2006"))
	fmt.Fprintf(&b, "Venta:     %s\n", yesNo(d.IsSale))
	fmt.Fprintf(&b, "Emisor:    %s (%s)", d.Internal.Name, d.Internal.NationalID)
	if d.Internal.Branch != "" {
		fmt.Fprintf(&b, " - %s", d.Internal.Branch)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Destino:   %s (%s)\n", d.Destination.Name, d.Destination.NationalID)
	fmt.Fprintf(&b, "Sucursal:  %s, %s, %s\n", d.DestinationBranch.Name, d.DestinationBranch.Address, d.DestinationBranch.Locality)
	b.WriteString("Detalle:\n")
	for i, l := range p.Lines {
		if l.IsContainerOnly() {
			fmt.Fprintf(&b, "  %2d. %d x %s (vacio)\n", i+1, l.Count(), l.ContainerLabel())
			continue
		}
		fmt.Fprintf(&b, "  %2d. %s  %s kg x $%s", i+1, l.ProductLabel(), l.Kilos, records.FormatAmount(l.Price()))
		if l.Container != nil {
			fmt.Fprintf(&b, "  [%d %s]", l.Count(), l.ContainerLabel())
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Total:     $%s\n", records.FormatAmount(p.ExpectedTotal))
	return b.String()
}

func yesNo(b bool) string {
	if b {
		return "Si"
	}
	return "No"
}
