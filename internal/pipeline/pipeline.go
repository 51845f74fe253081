// ABOUTME: Query pipeline wiring routing, extraction, reports, and recovery
// ABOUTME: Every question produces a response; the general path is terminal
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ecosense/aqroute/internal/config"
	"github.com/ecosense/aqroute/internal/extract"
	"github.com/ecosense/aqroute/internal/models"
	"github.com/ecosense/aqroute/internal/monitor"
	"github.com/ecosense/aqroute/internal/report"
	"github.com/ecosense/aqroute/internal/route"
)

const (
	clarifyIntentMsg   = "无法确定您想查询的内容,请补充地点和时间等信息。"
	clarifyLocationMsg = "您提到了多个地点,请明确要查询哪一个。"
)

// ReportExecutor runs a converted report request
type ReportExecutor interface {
	Execute(ctx context.Context, req *models.ReportRequest) (json.RawMessage, error)
}

// GeneralAsker answers a question through the query-synthesis backend
type GeneralAsker interface {
	Ask(ctx context.Context, question string, history []models.HistoryTurn) string
}

// FallbackRunner invokes model-assisted recovery for a stage
type FallbackRunner interface {
	Run(ctx context.Context, stage models.FallbackStage, question string, contextData map[string]any) (*models.FallbackEnvelope, bool)
}

// Pipeline handles one question end to end
type Pipeline struct {
	cfg       *config.Store
	primary   *route.PrimaryRouter
	extractor *extract.Extractor
	reporter  ReportExecutor
	general   GeneralAsker
	fallback  FallbackRunner
	metrics   *monitor.Metrics
}

// New wires the pipeline together
func New(cfg *config.Store, extractor *extract.Extractor, reporter ReportExecutor,
	general GeneralAsker, fallback FallbackRunner, metrics *monitor.Metrics) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		primary:   route.NewPrimaryRouter(cfg),
		extractor: extractor,
		reporter:  reporter,
		general:   general,
		fallback:  fallback,
		metrics:   metrics,
	}
}

// Handle answers a query request. It never returns an error; failures
// degrade through the recovery ladder down to the general path.
func (p *Pipeline) Handle(ctx context.Context, req models.QueryRequest) models.QueryResponse {
	start := time.Now()
	debug := &models.DebugInfo{RequestID: uuid.NewString()}
	defer func() {
		debug.ElapsedMS = time.Since(start).Milliseconds()
		p.metrics.RecordLatency(time.Since(start))
	}()

	decision := p.primary.Route(req.Question)
	// A caller-supplied intent hint outranks classification
	if hint := models.RoutingTarget(req.IntentHint); hint.IsValid() {
		decision = models.RoutingDecision{
			Target:     hint,
			Confidence: 1.0,
			Stage:      models.StageIntentHint,
			Trace:      decision.Trace,
		}
	}
	debug.Routing = &decision
	p.metrics.RecordRoute(decision.Target)

	var resp models.QueryResponse
	switch decision.Target {
	case models.TargetGeneralQuery:
		resp = p.answerGeneral(ctx, req, debug)
	case models.TargetClarification:
		resp = models.TextResponse(models.StatusClarification, clarifyIntentMsg)
	default:
		resp = p.answerStructured(ctx, req, debug)
	}

	if resp.Status == models.StatusError {
		p.metrics.RecordError()
	}
	resp.DebugInfo = debug
	return resp
}

func (p *Pipeline) answerGeneral(ctx context.Context, req models.QueryRequest, debug *models.DebugInfo) models.QueryResponse {
	answer := p.general.Ask(ctx, req.Question, req.History)
	return models.TextResponse(models.StatusSuccess, answer)
}

// runFallback invokes one recovery stage and records the attempt on the
// request's own debug trail. Attempts never mix across requests.
func (p *Pipeline) runFallback(ctx context.Context, debug *models.DebugInfo, stage models.FallbackStage, question string, contextData map[string]any) (*models.FallbackEnvelope, bool) {
	begin := time.Now()
	env, ok := p.fallback.Run(ctx, stage, question, contextData)
	p.metrics.RecordFallback(ok)

	attempt := models.FallbackAttempt{
		Stage:     stage,
		Accepted:  ok,
		ElapsedMS: time.Since(begin).Milliseconds(),
	}
	if env != nil {
		attempt.Action = env.Action
		attempt.Confidence = env.Confidence
	}
	debug.Fallbacks = append(debug.Fallbacks, attempt)
	return env, ok
}

// transition moves the recovery ladder to next, tagged with the error
// class that caused it. The class is what monitoring aggregates on.
func (p *Pipeline) transition(debug *models.DebugInfo, stage *models.RecoveryStage, next models.RecoveryStage, class models.ErrorClass) {
	*stage = next
	p.metrics.RecordRecovery(next)
	p.recordClass(debug, class)
	log.Printf("[pipeline] recovery -> %s (%s)", next, class)
}

func (p *Pipeline) recordClass(debug *models.DebugInfo, class models.ErrorClass) {
	debug.ErrorClasses = append(debug.ErrorClasses, class)
	p.metrics.RecordErrorClass(class)
}

// answerStructured walks the recovery ladder. Each failed rung escalates
// one stage; the general path closes the ladder.
func (p *Pipeline) answerStructured(ctx context.Context, req models.QueryRequest, debug *models.DebugInfo) models.QueryResponse {
	stage := models.StageToolSelectionOK
	defer func() { debug.RecoveryStage = stage.String() }()

	params := p.extractor.Extract(req.Question)
	debug.ReportKind = params.ReportKind

	if extract.Complex(params) {
		if !p.simplifyComplex(ctx, req, debug, params) {
			p.transition(debug, &stage, models.StageGeneralFallback, models.ClassAmbiguity)
			return p.answerGeneral(ctx, req, debug)
		}
	}

	if !p.completeParameters(ctx, debug, req.Question, params, &stage) {
		p.transition(debug, &stage, models.StageGeneralFallback, models.ClassExtractionFailure)
		return p.answerGeneral(ctx, req, debug)
	}

	apiReq, err := report.Convert(params, p.cfg.Get().MultiLocationMode)
	if errors.Is(err, report.ErrAmbiguousLocation) {
		p.recordClass(debug, models.ClassAmbiguity)
		return models.TextResponse(models.StatusClarification, clarifyLocationMsg)
	}
	if err != nil {
		// Completion said the parameters were ready; treat this as terminal
		log.Printf("[pipeline] conversion failed after completion: %v", err)
		p.transition(debug, &stage, models.StageGeneralFallback, models.ClassExtractionFailure)
		return p.answerGeneral(ctx, req, debug)
	}

	p.metrics.RecordReport(apiReq.Kind)
	result, err := p.executeWithRecovery(ctx, debug, req.Question, apiReq, &stage)
	if err != nil {
		p.transition(debug, &stage, models.StageGeneralFallback, models.ClassAPIError)
		return p.answerGeneral(ctx, req, debug)
	}

	if !p.validateResult(ctx, debug, req.Question, result) {
		p.transition(debug, &stage, models.StageGeneralFallback, models.ClassValidationFailure)
		return p.answerGeneral(ctx, req, debug)
	}

	var value any
	if err := json.Unmarshal(result, &value); err != nil {
		value = string(result)
	}
	return models.DataResponse(value)
}

// simplifyComplex asks the model to reduce a multi-period question to a
// single-report one. Returns false when the question stays complex and
// must divert to the general path.
func (p *Pipeline) simplifyComplex(ctx context.Context, req models.QueryRequest, debug *models.DebugInfo, params *models.ExtractedParameters) bool {
	env, ok := p.runFallback(ctx, debug, models.FallbackComplexProcessing, req.Question, map[string]any{
		"time_range_count": len(params.TimeRanges),
	})
	if ok && env.Action == models.ActionContinue && env.ResultData != nil {
		applyResultData(params, env.ResultData)
		extract.Deduplicate(params)
	}
	return !extract.Complex(params)
}

// completionStage is one targeted parameter-repair rung. Which rungs run,
// and in what order, comes from the routing config's priorities.
type completionStage struct {
	stage   models.FallbackStage
	applies func(*models.ExtractedParameters) bool
	payload func(*models.ExtractedParameters) map[string]any
}

var completionStages = []completionStage{
	{
		stage:   models.FallbackTimeParsing,
		applies: func(p *models.ExtractedParameters) bool { return !p.HasTime() },
	},
	{
		stage: models.FallbackContrastRecovery,
		applies: func(p *models.ExtractedParameters) bool {
			return p.ReportKind == models.ReportComparison && p.ContrastTime == nil && p.HasTime()
		},
		payload: func(p *models.ExtractedParameters) map[string]any {
			return map[string]any{"main_range": p.TimeRanges[0]}
		},
	},
	{
		stage:   models.FallbackParamSupplement,
		applies: func(p *models.ExtractedParameters) bool { return !p.Complete() },
		payload: func(p *models.ExtractedParameters) map[string]any {
			return map[string]any{"extracted": p}
		},
	},
}

// completeParameters fills missing parameters through targeted fallback
// stages, ordered by configured priority. Returns false when the
// parameters cannot be completed.
func (p *Pipeline) completeParameters(ctx context.Context, debug *models.DebugInfo, question string, params *models.ExtractedParameters, stage *models.RecoveryStage) bool {
	if params.Complete() {
		return true
	}

	p.transition(debug, stage, models.StageParamRetry, models.ClassExtractionFailure)

	rc := p.cfg.Get()
	stages := make([]completionStage, len(completionStages))
	copy(stages, completionStages)
	sort.SliceStable(stages, func(i, j int) bool {
		return rc.StagePriority(string(stages[i].stage), 1) < rc.StagePriority(string(stages[j].stage), 1)
	})

	for _, cs := range stages {
		if params.Complete() {
			return true
		}
		if !cs.applies(params) {
			continue
		}
		var contextData map[string]any
		if cs.payload != nil {
			contextData = cs.payload(params)
		}
		env, ok := p.runFallback(ctx, debug, cs.stage, question, contextData)
		if ok {
			applyResultData(params, env.ResultData)
			extract.Deduplicate(params)
		}
	}
	if params.Complete() {
		return true
	}

	// Tool reselection: a comparison missing only its baseline still
	// works as a summary report
	p.transition(debug, stage, models.StageToolReselection, models.ClassLowConfidence)
	if params.ReportKind == models.ReportComparison && params.HasLocation() && params.HasTime() {
		params.ReportKind = models.ReportSummary
		params.ContrastTime = nil
		return true
	}
	return false
}

// executeWithRecovery calls the API and gives the model one chance to
// repair a failed call before escalating.
func (p *Pipeline) executeWithRecovery(ctx context.Context, debug *models.DebugInfo, question string, apiReq *models.ReportRequest, stage *models.RecoveryStage) (json.RawMessage, error) {
	result, err := p.reporter.Execute(ctx, apiReq)
	if err == nil {
		return result, nil
	}

	p.transition(debug, stage, models.StageAPIErrorRecovery, models.ClassAPIError)
	log.Printf("[pipeline] report call failed: %v", err)

	env, ok := p.runFallback(ctx, debug, models.FallbackAPIErrorRecovery, question, map[string]any{
		"error":   err.Error(),
		"request": apiReq,
	})
	if ok && env.Action == models.ActionRetry {
		if env.ResultData != nil {
			applyRequestData(apiReq, env.ResultData)
		}
		return p.reporter.Execute(ctx, apiReq)
	}
	return nil, err
}

// validateResult asks the model about suspicious (empty) results
func (p *Pipeline) validateResult(ctx context.Context, debug *models.DebugInfo, question string, result json.RawMessage) bool {
	if !emptyResult(result) {
		return true
	}
	env, ok := p.runFallback(ctx, debug, models.FallbackResultValidation, question, map[string]any{
		"result": string(result),
	})
	if ok && env.Action == models.ActionContinue {
		return true
	}
	return false
}

func emptyResult(result json.RawMessage) bool {
	var value any
	if err := json.Unmarshal(result, &value); err != nil {
		return true
	}
	switch v := value.(type) {
	case nil:
		return true
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}
