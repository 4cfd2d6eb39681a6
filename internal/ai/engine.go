package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/hirepipe/hirepipe/internal/config"
	"github.com/hirepipe/hirepipe/pkg/models"
	"github.com/hirepipe/hirepipe/pkg/ollama"
	"github.com/hirepipe/hirepipe/pkg/repository"
)

// Engine wraps an Ollama client and produces the decisions the workflow
// stages need: screening verdicts, interview round feedback, and the final
// HR report. Prompt templates and response schemas come from the repository.
type Engine struct {
	client *ollama.Client
	cfg    config.EngineConfig
	loader *Loader
	logger *slog.Logger

	screeningTpl *models.Template
	feedbackTpl  *models.Template
	reportTpl    *models.Template
}

// NewEngine creates the AI engine. Templates for all three tasks and their
// schemas must already be present (the migration seeder provides defaults).
func NewEngine(ctx context.Context, client *ollama.Client, cfg config.EngineConfig, sr repository.SchemaRepo, tr repository.TemplateRepo, logger *slog.Logger) (*Engine, error) {
	if sr == nil {
		return nil, fmt.Errorf("schema repo is required")
	}
	if tr == nil {
		return nil, fmt.Errorf("template repo is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TemplateVersion == "" {
		cfg.TemplateVersion = "v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.ShortlistThreshold <= 0 {
		cfg.ShortlistThreshold = 0.7
	}

	loader, err := NewLoader(ctx, sr)
	if err != nil {
		return nil, fmt.Errorf("create loader: %w", err)
	}

	e := &Engine{client: client, cfg: cfg, loader: loader, logger: logger}

	for name, dst := range map[string]**models.Template{
		"screening": &e.screeningTpl,
		"feedback":  &e.feedbackTpl,
		"report":    &e.reportTpl,
	} {
		tpl, err := tr.GetTemplate(ctx, name, cfg.TemplateVersion)
		if err != nil {
			return nil, fmt.Errorf("load template %s: %w", name, err)
		}
		if tpl == nil || tpl.TemplateTxt == "" {
			return nil, fmt.Errorf("template %s:%s not found", name, cfg.TemplateVersion)
		}
		*dst = tpl
	}

	return e, nil
}

func (e *Engine) ReloadSchemas(ctx context.Context) error {
	return e.loader.Reload(ctx)
}

type screeningResponse struct {
	Score    float64 `json:"score"`
	Decision string  `json:"decision"`
	Reasons  string  `json:"reasons"`
}

// Screen evaluates one resume against the job description. The returned
// result has no candidate id; the caller assigns it.
func (e *Engine) Screen(ctx context.Context, jobDescription, resume string) (models.ScreeningResult, error) {
	var out models.ScreeningResult

	data := map[string]any{"JobDescription": jobDescription, "Resume": resume}
	var resp screeningResponse
	if err := e.generateJSON(ctx, e.screeningTpl, data, &resp); err != nil {
		return out, fmt.Errorf("screen resume: %w", err)
	}

	if resp.Score < 0 {
		resp.Score = 0
	}
	if resp.Score > 1 {
		resp.Score = 1
	}

	decision := models.ScreeningDecision(resp.Decision)
	if resp.Decision == "" {
		// fall back to the configured threshold when the model omits a verdict
		decision = models.ScreeningReject
		if resp.Score >= e.cfg.ShortlistThreshold {
			decision = models.ScreeningShortlist
		}
	}
	if !decision.Valid() {
		return out, fmt.Errorf("screen resume: model returned unknown decision %q", resp.Decision)
	}

	out.Score = resp.Score
	out.Decision = decision
	out.Reasons = strings.TrimSpace(resp.Reasons)
	return out, nil
}

type feedbackResponse struct {
	Feedback string `json:"feedback"`
	Decision string `json:"decision"`
}

// EvaluateRound produces interviewer feedback and a decision for the round
// the candidate is currently waiting on.
func (e *Engine) EvaluateRound(ctx context.Context, jobDescription string, cand *models.CandidateInterview) (string, models.RoundDecision, error) {
	data := map[string]any{
		"JobDescription": jobDescription,
		"CandidateID":    cand.CandidateID,
		"RoundNumber":    cand.CurrentRound,
		"Slot":           cand.PendingSlot,
		"History":        cand.History,
	}

	var resp feedbackResponse
	if err := e.generateJSON(ctx, e.feedbackTpl, data, &resp); err != nil {
		return "", "", fmt.Errorf("evaluate round %d for %s: %w", cand.CurrentRound, cand.CandidateID, err)
	}

	decision := models.RoundDecision(resp.Decision)
	if !decision.Valid() {
		return "", "", fmt.Errorf("evaluate round %d for %s: model returned unknown decision %q", cand.CurrentRound, cand.CandidateID, resp.Decision)
	}

	return strings.TrimSpace(resp.Feedback), decision, nil
}

// GenerateReport writes the HR summary for a finished pipeline. The model
// output is prose, not JSON, so no schema applies.
func (e *Engine) GenerateReport(ctx context.Context, state *models.WorkflowState) (string, error) {
	prompt, err := ollama.RenderTemplate(e.reportTpl.TemplateTxt, state)
	if err != nil {
		return "", fmt.Errorf("render report template: %w", err)
	}

	ctxReq, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	out, err := e.client.Generate(ctxReq, e.cfg.Model, prompt)
	if err != nil {
		return "", fmt.Errorf("generate report: %w", err)
	}

	report := strings.TrimSpace(out.Text)
	if report == "" {
		return "", errors.New("generate report: empty model response")
	}
	return report, nil
}

// generateJSON renders a template, calls the model, extracts the JSON object
// from the response, validates it against the template's schema, and
// unmarshals it into out.
func (e *Engine) generateJSON(ctx context.Context, tpl *models.Template, data any, out any) error {
	prompt, err := ollama.RenderTemplate(tpl.TemplateTxt, data)
	if err != nil {
		return fmt.Errorf("render template %s: %w", tpl.Name, err)
	}

	ctxReq, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	res, err := e.client.Generate(ctxReq, e.cfg.Model, prompt)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	j := ExtractJSON(res.Text)
	if j == "" {
		e.logger.Warn("no JSON object in model response", slog.String("template", tpl.Name), slog.String("raw", res.Text))
		return fmt.Errorf("no JSON object found in response")
	}

	if tpl.SchemaVer != nil && *tpl.SchemaVer != "" {
		schema, ok := e.loader.GetSchema(*tpl.SchemaVer)
		if !ok || schema == nil {
			return fmt.Errorf("no schema found for version %s", *tpl.SchemaVer)
		}
		verrs, err := schema.ValidateBytes(ctxReq, []byte(j))
		if err != nil {
			return fmt.Errorf("schema validate error: %w", err)
		}
		if len(verrs) > 0 {
			var sb strings.Builder
			for _, v := range verrs {
				sb.WriteString(v.Message)
				sb.WriteString("; ")
			}
			return fmt.Errorf("response does not match schema %s: %s", *tpl.SchemaVer, sb.String())
		}
	}

	if err := unmarshalJSON(j, out); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	return nil
}
