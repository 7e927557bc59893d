package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/bosocmputer/pharmacist_assistant/internal/models"
	"github.com/bosocmputer/pharmacist_assistant/internal/processor"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan [image]",
		Short: "Read a prescription and verify its medication names",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScan,
	}

	RootCmd.AddCommand(cmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	meds, verdicts, err := readPrescription(cmd, args)
	if err != nil {
		return err
	}

	if len(meds.Medications) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "⚠️  No medications found. Try a clearer photo of the prescription.")
	}

	review := processor.ReviewCorrections(verdicts)

	out := cmd.OutOrStdout()
	if formatFlag == "json" {
		return writeJSON(out, map[string]interface{}{
			"medications": meds,
			"spell_check": verdicts,
			"review":      review,
		})
	}

	writeMedicationTable(out, meds)
	fmt.Fprintln(out)
	writeSpellCheckTable(out, verdicts)
	if processor.NeedsReview(review) {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "⚠️  Check before ordering:")
		for _, item := range review {
			if item.RequiresReview {
				fmt.Fprintf(out, "  %s → %s: %s\n", item.InputName, item.CorrectedName, item.Reason)
			}
		}
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func writeMedicationTable(w io.Writer, meds *models.MedicationResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MEDICATION\tDOSAGE\tQTY\tHOW\tHOW MUCH\tWHEN")
	for _, m := range meds.Medications {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			m.MedicationName, m.Dosage, m.Quantity,
			m.Instructions.How, m.Instructions.HowMuch, m.Instructions.When)
	}
	tw.Flush()
}

func writeSpellCheckTable(w io.Writer, verdicts *models.SpellCheckResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ORIGINAL\tCORRECTED\tGENERIC\tBRANDS\tOK\tNOTES")
	for _, d := range verdicts.Drugs {
		ok := "✗"
		if d.IsCorrect {
			ok = "✓"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			d.InputName, d.CorrectedName,
			strings.Join(d.GenericName, ", "), strings.Join(d.BrandNames, ", "),
			ok, d.Notes)
	}
	tw.Flush()
}
