package cli

import (
	"errors"
	"fmt"

	"github.com/bosocmputer/pharmacist_assistant/internal/order"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "order [image]",
		Short: "Read a prescription and print a WhatsApp order link",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runOrder,
	}

	cmd.Flags().StringP("phone", "p", "", "Pharmacy phone number with country code (required)")
	cmd.Flags().StringP("message", "m", "", "Custom message instead of the generated order text")
	cmd.MarkFlagRequired("phone")

	RootCmd.AddCommand(cmd)
}

func runOrder(cmd *cobra.Command, args []string) error {
	phone, _ := cmd.Flags().GetString("phone")
	custom, _ := cmd.Flags().GetString("message")

	if _, err := order.NormalizePhone(phone); err != nil {
		return err
	}

	meds, _, err := readPrescription(cmd, args)
	if err != nil {
		return err
	}
	if len(meds.Medications) == 0 {
		return errors.New("no medications found to order")
	}

	lines := order.LinesFrom(meds)
	message := custom
	if message == "" {
		message = order.FormatMessage(lines)
	}

	link, err := order.WhatsAppURL(message, phone)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if formatFlag == "json" {
		return writeJSON(out, map[string]interface{}{
			"order_lines":  lines,
			"message":      message,
			"whatsapp_url": link,
		})
	}

	fmt.Fprint(out, message)
	fmt.Fprintln(out)
	fmt.Fprintln(out, link)
	return nil
}
