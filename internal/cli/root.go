// Package cli implements the rxscan command line tool.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/bosocmputer/pharmacist_assistant/configs"
	"github.com/bosocmputer/pharmacist_assistant/internal/ai"
	"github.com/bosocmputer/pharmacist_assistant/internal/common"
	"github.com/bosocmputer/pharmacist_assistant/internal/models"
	"github.com/bosocmputer/pharmacist_assistant/internal/processor"
	"github.com/bosocmputer/pharmacist_assistant/internal/sample"
	"github.com/spf13/cobra"
)

var (
	formatFlag string
	dummyFlag  bool
)

// Processor runs the prescription pipeline on one image.
type Processor interface {
	Process(ctx context.Context, image []byte, mimeType string, reqCtx *common.RequestContext) (*models.MedicationResponse, *models.SpellCheckResponse, error)
}

// newProcessor builds the Gemini pipeline; tests replace it.
var newProcessor = func() (Processor, error) {
	configs.LoadConfig()
	gen, err := ai.NewGeneratorFromConfig()
	if err != nil {
		return nil, err
	}
	return processor.NewPipelineFromConfig(
		ai.NewExtractorFromConfig(gen),
		ai.NewVerifierFromConfig(gen),
	), nil
}

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:          "rxscan",
	Short:        "Read prescriptions and build pharmacy orders",
	Long:         "Reads a prescription photo with Gemini, verifies every medication name and prints the result.",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().BoolVar(&dummyFlag, "dummy", false, "Use the built-in demo prescription instead of an image")
}

// readPrescription returns the reconciled medications and verdicts for the
// image at path, or the demo data with --dummy.
func readPrescription(cmd *cobra.Command, args []string) (*models.MedicationResponse, *models.SpellCheckResponse, error) {
	if formatFlag != "json" && formatFlag != "text" {
		return nil, nil, fmt.Errorf("unknown format %q (want json or text)", formatFlag)
	}

	if dummyFlag {
		meds, verdicts := sample.Dummy()
		return meds, verdicts, nil
	}
	if len(args) != 1 {
		return nil, nil, fmt.Errorf("an image path is required (or use --dummy)")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("image %s is empty", args[0])
	}

	mimeType, err := imageMIME(args[0], data)
	if err != nil {
		return nil, nil, err
	}

	p, err := newProcessor()
	if err != nil {
		return nil, nil, err
	}

	reqCtx := common.NewRequestContext("cli")
	meds, verdicts, err := p.Process(cmd.Context(), data, mimeType, reqCtx)
	if err != nil {
		return nil, nil, err
	}
	reqCtx.GetSummary()

	if verdicts == nil {
		verdicts = models.NewSpellCheckResponse()
	}
	return meds, verdicts, nil
}

// imageMIME accepts PNG and JPEG, judged by extension then content
func imageMIME(path string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png", nil
	case ".jpg", ".jpeg":
		return "image/jpeg", nil
	}

	switch detected := http.DetectContentType(data); detected {
	case "image/png", "image/jpeg":
		return detected, nil
	default:
		return "", fmt.Errorf("%s is not a PNG or JPEG image (%s)", path, detected)
	}
}
