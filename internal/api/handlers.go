// handlers.go - HTTP handlers for prescription upload, review and ordering

package api

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/bosocmputer/pharmacist_assistant/internal/ai"
	"github.com/bosocmputer/pharmacist_assistant/internal/common"
	"github.com/bosocmputer/pharmacist_assistant/internal/fda"
	"github.com/bosocmputer/pharmacist_assistant/internal/models"
	"github.com/bosocmputer/pharmacist_assistant/internal/order"
	"github.com/bosocmputer/pharmacist_assistant/internal/processor"
	"github.com/bosocmputer/pharmacist_assistant/internal/sample"
	"github.com/bosocmputer/pharmacist_assistant/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// warningsConcurrency caps parallel openFDA lookups per request
const warningsConcurrency = 4

// Processor runs the prescription pipeline on one image.
type Processor interface {
	Process(ctx context.Context, image []byte, mimeType string, reqCtx *common.RequestContext) (*models.MedicationResponse, *models.SpellCheckResponse, error)
}

// WarningsLookup fetches label warnings for one drug name.
type WarningsLookup interface {
	Lookup(ctx context.Context, drug string) (*fda.DrugWarnings, error)
}

// Handler serves the prescription endpoints.
type Handler struct {
	Pipeline Processor
	Store    storage.Store
	Retry    ai.RetryConfig // MaxAttempts <= 1 calls Process once
	Warnings WarningsLookup // nil disables the warnings endpoint
}

// MedicationRow is one line of the prescription table.
type MedicationRow struct {
	MedicationName string `json:"Medication Name"`
	Dosage         string `json:"Dosage"`
	Quantity       int    `json:"Quantity"`
	HowToTake      string `json:"How to Take"`
	HowMuch        string `json:"How Much"`
	WhenToTake     string `json:"When to Take"`
}

// SpellCheckRow is one line of the spell check table.
type SpellCheckRow struct {
	OriginalName     string `json:"Original Name"`
	CorrectedName    string `json:"Corrected Name"`
	GenericNames     string `json:"Generic Names"`
	BrandNames       string `json:"Brand Names"`
	CorrectlySpelled string `json:"Correctly Spelled"`
	IsGeneric        string `json:"Is Generic"`
	Notes            string `json:"Notes"`
}

var acceptedImageTypes = map[string]string{
	"image/png":  "image/png",
	"image/jpeg": "image/jpeg",
	"image/jpg":  "image/jpeg",
}

// Register mounts the prescription routes on r
func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/api/v1/prescriptions")
	g.POST("", h.CreatePrescription)
	g.GET("/:id", h.GetPrescription)
	g.GET("/:id/spellcheck", h.GetSpellCheck)
	g.POST("/:id/order", h.SaveOrder)
	g.GET("/:id/whatsapp", h.WhatsApp)
	g.GET("/:id/warnings", h.GetWarnings)
}

// CreatePrescription reads an uploaded prescription (or the demo data when
// use_dummy is set) and stores the result as a new session.
func (h *Handler) CreatePrescription(c *gin.Context) {
	useDummy, _ := strconv.ParseBool(c.PostForm("use_dummy"))
	if !useDummy {
		useDummy, _ = strconv.ParseBool(c.Query("use_dummy"))
	}

	reqCtx := common.NewRequestContext("http")

	var (
		meds     *models.MedicationResponse
		verdicts *models.SpellCheckResponse
		source   = "upload"
	)

	if useDummy {
		source = "dummy"
		meds, verdicts = sample.Dummy()
		reqCtx.LogInfo("Using demo prescription data")
	} else {
		image, mimeType, status, err := readUpload(c)
		if err != nil {
			c.JSON(status, gin.H{
				"error":      err.Error(),
				"request_id": reqCtx.RequestID,
			})
			return
		}
		reqCtx.LogInfo("📥 Received %s image (%d bytes)", mimeType, len(image))

		meds, verdicts, err = h.process(c.Request.Context(), image, mimeType, reqCtx)
		if err != nil {
			reqCtx.LogError("Processing failed: %v", err)
			body := ai.BuildUserFriendlyError(err)
			body["request_id"] = reqCtx.RequestID
			if errors.Is(err, context.DeadlineExceeded) {
				body["partial_summary"] = reqCtx.GetPartialSummary()
			}
			c.JSON(statusFor(err), body)
			return
		}
	}

	if verdicts == nil {
		verdicts = models.NewSpellCheckResponse()
	}

	sess := &storage.Session{
		ID:          uuid.New().String(),
		RequestID:   reqCtx.RequestID,
		Source:      source,
		Medications: meds,
		SpellCheck:  verdicts,
	}
	if err := h.Store.Save(c.Request.Context(), sess); err != nil {
		reqCtx.LogError("Failed to save session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to save session",
			"details":    err.Error(),
			"request_id": reqCtx.RequestID,
		})
		return
	}

	review := processor.ReviewCorrections(verdicts)

	body := gin.H{
		"session_id":         sess.ID,
		"request_id":         reqCtx.RequestID,
		"source":             source,
		"medications":        meds,
		"spell_check":        verdicts,
		"review":             review,
		"requires_review":    processor.NeedsReview(review),
		"processing_summary": reqCtx.GetSummary(),
	}
	if len(meds.Medications) == 0 {
		reqCtx.LogWarning("No medications found in image")
		body["message"] = "no medications found"
		body["suggestion"] = "Please upload a clearer photo of the prescription."
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) process(ctx context.Context, image []byte, mimeType string, reqCtx *common.RequestContext) (*models.MedicationResponse, *models.SpellCheckResponse, error) {
	if h.Retry.MaxAttempts <= 1 {
		return h.Pipeline.Process(ctx, image, mimeType, reqCtx)
	}

	var (
		meds     *models.MedicationResponse
		verdicts *models.SpellCheckResponse
	)
	err := ai.Retry(ctx, h.Retry, reqCtx, func(ctx context.Context) error {
		var err error
		meds, verdicts, err = h.Pipeline.Process(ctx, image, mimeType, reqCtx)
		return err
	})
	return meds, verdicts, err
}

// readUpload returns the image bytes, normalised MIME type, and on failure
// the HTTP status to answer with.
func readUpload(c *gin.Context) ([]byte, string, int, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			return nil, "", http.StatusRequestEntityTooLarge, errors.New("uploaded file is too large")
		}
		return nil, "", http.StatusBadRequest, errors.New("file is required (or set use_dummy=true)")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, "", http.StatusBadRequest, errors.New("failed to open uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		if isTooLarge(err) {
			return nil, "", http.StatusRequestEntityTooLarge, errors.New("uploaded file is too large")
		}
		return nil, "", http.StatusBadRequest, errors.New("failed to read uploaded file")
	}
	if len(data) == 0 {
		return nil, "", http.StatusBadRequest, errors.New("uploaded file is empty")
	}

	declared := strings.ToLower(strings.TrimSpace(fileHeader.Header.Get("Content-Type")))
	if i := strings.Index(declared, ";"); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared == "" || declared == "application/octet-stream" {
		declared = http.DetectContentType(data)
	}

	mimeType, ok := acceptedImageTypes[declared]
	if !ok {
		return nil, "", http.StatusBadRequest, errors.New("file must be a PNG or JPEG image")
	}
	return data, mimeType, 0, nil
}

// statusFor maps a pipeline error to an HTTP status. A transport failure
// decides the status even when it is the cause of a verification error.
func statusFor(err error) int {
	var transportErr *ai.TransportError
	if errors.As(err, &transportErr) {
		switch transportErr.Category {
		case "rate_limit", "quota_exceeded":
			return http.StatusTooManyRequests
		case "timeout":
			return http.StatusGatewayTimeout
		case "payload_too_large":
			return http.StatusRequestEntityTooLarge
		default:
			return http.StatusBadGateway
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}

	var verifyErr *ai.VerificationError
	if errors.As(err, &verifyErr) {
		return http.StatusBadGateway
	}

	var configErr *ai.ConfigurationError
	if errors.As(err, &configErr) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// loadSession writes 404/500 itself and returns nil when the session is unavailable
func (h *Handler) loadSession(c *gin.Context) *storage.Session {
	id := c.Param("id")
	sess, err := h.Store.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":      "session not found",
				"session_id": id,
			})
			return nil
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load session",
			"details": err.Error(),
		})
		return nil
	}
	return sess
}

// GetPrescription returns the medications as table rows
func (h *Handler) GetPrescription(c *gin.Context) {
	sess := h.loadSession(c)
	if sess == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":  sess.ID,
		"medications": medicationRows(sess.Medications),
	})
}

// GetSpellCheck returns the verification verdicts as table rows
func (h *Handler) GetSpellCheck(c *gin.Context) {
	sess := h.loadSession(c)
	if sess == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":  sess.ID,
		"spell_check": spellCheckRows(sess.SpellCheck),
	})
}

// SaveOrder stores the edited order lines and returns the formatted message
func (h *Handler) SaveOrder(c *gin.Context) {
	var lines []order.Line
	if err := c.ShouldBindJSON(&lines); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "Invalid request format",
			"details":  err.Error(),
			"expected": "JSON array of {\"Medication Name\", \"Dosage\", \"Quantity\"}",
		})
		return
	}

	for i, l := range lines {
		if strings.TrimSpace(l.MedicationName) == "" || l.Quantity < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "each line needs a medication name and a non-negative quantity",
				"line":  i,
			})
			return
		}
	}

	id := c.Param("id")
	message := order.FormatMessage(lines)
	if err := h.Store.SaveOrder(c.Request.Context(), id, lines, message); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found", "session_id": id})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to save order",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":  id,
		"order_lines": lines,
		"message":     message,
	})
}

// WhatsApp redirects to a wa.me chat with the order prefilled. Without a
// saved order the extracted medications are used.
func (h *Handler) WhatsApp(c *gin.Context) {
	sess := h.loadSession(c)
	if sess == nil {
		return
	}

	lines := sess.OrderLines
	if lines == nil {
		lines = order.LinesFrom(sess.Medications)
	}

	message := c.Query("custom_message")
	if message == "" {
		message = sess.OrderMessage
	}

	link, err := order.SendURL(lines, c.Query("phone_number"), message)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid phone_number",
			"details": err.Error(),
		})
		return
	}

	c.Redirect(http.StatusFound, link)
}

func medicationRows(resp *models.MedicationResponse) []MedicationRow {
	rows := []MedicationRow{}
	if resp == nil {
		return rows
	}
	for _, m := range resp.Medications {
		rows = append(rows, MedicationRow{
			MedicationName: m.MedicationName,
			Dosage:         m.Dosage,
			Quantity:       m.Quantity,
			HowToTake:      m.Instructions.How,
			HowMuch:        m.Instructions.HowMuch,
			WhenToTake:     m.Instructions.When,
		})
	}
	return rows
}

func spellCheckRows(resp *models.SpellCheckResponse) []SpellCheckRow {
	rows := []SpellCheckRow{}
	if resp == nil {
		return rows
	}
	for _, d := range resp.Drugs {
		rows = append(rows, SpellCheckRow{
			OriginalName:     d.InputName,
			CorrectedName:    d.CorrectedName,
			GenericNames:     strings.Join(d.GenericName, ", "),
			BrandNames:       strings.Join(d.BrandNames, ", "),
			CorrectlySpelled: yesNo(d.IsCorrect, "✓", "✗"),
			IsGeneric:        yesNo(d.IsGeneric, "Yes", "No"),
			Notes:            d.Notes,
		})
	}
	return rows
}

func yesNo(b bool, yes, no string) string {
	if b {
		return yes
	}
	return no
}

// DrugWarningsRow is the warnings entry for one medication. Error is set
// instead of the label fields when the lookup failed.
type DrugWarningsRow struct {
	Drug             string `json:"drug"`
	MatchedOn        string `json:"matched_on,omitempty"`
	Warnings         string `json:"warnings,omitempty"`
	BoxedWarning     string `json:"boxed_warning,omitempty"`
	AdverseReactions string `json:"adverse_reactions,omitempty"`
	Error            string `json:"error,omitempty"`
}

// GetWarnings looks up openFDA label warnings for each distinct medication
// in the session. A failed lookup is reported on its row only.
func (h *Handler) GetWarnings(c *gin.Context) {
	if h.Warnings == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "drug warnings lookup is not configured"})
		return
	}

	sess := h.loadSession(c)
	if sess == nil {
		return
	}

	names := distinctMedicationNames(sess.Medications)
	rows := make([]DrugWarningsRow, len(names))

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.SetLimit(warningsConcurrency)
	for i, name := range names {
		g.Go(func() error {
			rows[i] = h.lookupWarnings(ctx, name)
			return nil
		})
	}
	g.Wait()

	c.JSON(http.StatusOK, gin.H{
		"session_id": sess.ID,
		"warnings":   rows,
	})
}

func (h *Handler) lookupWarnings(ctx context.Context, name string) DrugWarningsRow {
	w, err := h.Warnings.Lookup(ctx, name)
	if err != nil {
		if !errors.Is(err, fda.ErrNotFound) {
			log.Printf("⚠️  openFDA lookup for %q failed: %v", name, err)
		}
		return DrugWarningsRow{Drug: name, Error: err.Error()}
	}
	return DrugWarningsRow{
		Drug:             name,
		MatchedOn:        w.MatchedOn,
		Warnings:         w.Warnings,
		BoxedWarning:     w.BoxedWarning,
		AdverseReactions: w.AdverseReactions,
	}
}

// distinctMedicationNames keeps first-seen order, ignoring case and blanks
func distinctMedicationNames(meds *models.MedicationResponse) []string {
	if meds == nil {
		return nil
	}
	seen := make(map[string]bool)
	var names []string
	for _, m := range meds.Medications {
		name := strings.TrimSpace(m.MedicationName)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, name)
	}
	return names
}
