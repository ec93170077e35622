package flow

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"catalog-cli/internal/api"
	"catalog-cli/internal/model"
	"catalog-cli/internal/session"
)

const (
	StepSourceConfig = "source-config"
	StepSystemInfo   = "system-info"
	StepExtracting   = "extracting"
	StepResult       = "result"
)

// Extractor is the part of api.Client the wizard submits through.
type Extractor interface {
	ExtractFromSource(ctx context.Context, sess session.Session, req model.ExtractionRequest) (api.Ack, error)
}

// ExtractionResult is what the result step shows.
type ExtractionResult struct {
	Success bool   `json:"success" yaml:"success"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	ID      string `json:"id,omitempty" yaml:"id,omitempty"`
}

// ExtractionWizard collects an extraction request over two input steps and submits it.
type ExtractionWizard struct {
	*Controller

	client Extractor
	sess   session.Session
	log    *slog.Logger

	mu     sync.Mutex
	req    model.ExtractionRequest
	result ExtractionResult
}

func NewExtractionWizard(client Extractor, sess session.Session, logger *slog.Logger) *ExtractionWizard {
	w := &ExtractionWizard{
		client: client,
		sess:   sess,
		log:    logger.With("component", "flow", "flow", "extraction"),
		req:    defaultExtractionRequest(sess),
	}
	w.Controller = &Controller{
		steps: []Step{
			{Name: StepSourceConfig, Validate: w.validateSource},
			{Name: StepSystemInfo, Validate: w.validateSystem},
			{Name: StepExtracting, Pending: true},
			{Name: StepResult},
		},
		input: 1,
	}
	return w
}

func defaultExtractionRequest(sess session.Session) model.ExtractionRequest {
	return model.ExtractionRequest{
		Source:           model.ExtractionSource{Type: "github", Branch: "main"},
		Options:          model.ExtractionOptions{IncludeCode: true, IncludeDocs: true, IncludeDiagrams: true},
		System:           model.ExtractionSystem{OwnerID: sess.User.ID},
		ApprovalStrategy: model.ApprovalStrategyManual,
	}
}

func (w *ExtractionWizard) validateSource() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.req.ValidateSource()
}

func (w *ExtractionWizard) validateSystem() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.req.ValidateSystem()
}

func (w *ExtractionWizard) Request() model.ExtractionRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.req
}

func (w *ExtractionWizard) SetSource(url, branch string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.req.Source.URL = strings.TrimSpace(url)
	if b := strings.TrimSpace(branch); b != "" {
		w.req.Source.Branch = b
	}
}

func (w *ExtractionWizard) SetOptions(opts model.ExtractionOptions) {
	w.mu.Lock()
	w.req.Options = opts
	w.mu.Unlock()
}

func (w *ExtractionWizard) SetSystem(name, description, domainID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.req.System.Name = strings.TrimSpace(name)
	w.req.System.Description = strings.TrimSpace(description)
	w.req.System.DomainID = strings.TrimSpace(domainID)
}

func (w *ExtractionWizard) SetApprovalStrategy(s model.ApprovalStrategy) {
	w.mu.Lock()
	w.req.ApprovalStrategy = s
	w.mu.Unlock()
}

func (w *ExtractionWizard) Result() ExtractionResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// Extract performs the request for a submit already started with Begin and
// finishes the controller with its outcome.
func (w *ExtractionWizard) Extract(ctx context.Context) (ExtractionResult, error) {
	req := w.Request()
	ack, err := w.client.ExtractFromSource(ctx, w.sess, req)

	w.mu.Lock()
	if err != nil {
		w.result = ExtractionResult{}
	} else {
		w.result = ExtractionResult{Success: ack.Success, Message: ack.Message, ID: ack.ID}
	}
	res := w.result
	w.mu.Unlock()

	if err != nil {
		w.log.WarnContext(ctx, "extraction failed", slog.String("url", req.Source.URL), slog.String("error", err.Error()))
	} else {
		w.log.InfoContext(ctx, "extraction submitted", slog.String("url", req.Source.URL), slog.String("system", req.System.Name))
	}
	w.Finish(err)
	return res, err
}

// Run submits the request from the system-info step and waits for the outcome.
func (w *ExtractionWizard) Run(ctx context.Context) (ExtractionResult, error) {
	if err := w.Begin(); err != nil {
		return ExtractionResult{}, err
	}
	return w.Extract(ctx)
}

// Reset clears the form and returns to the first step.
func (w *ExtractionWizard) Reset() {
	w.mu.Lock()
	w.req = defaultExtractionRequest(w.sess)
	w.result = ExtractionResult{}
	w.mu.Unlock()
	w.Controller.Reset()
}
