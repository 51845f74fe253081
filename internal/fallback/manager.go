// ABOUTME: Unified fallback manager invoking the model for recovery situations
// ABOUTME: One envelope contract, per-stage thresholds, bounded attempt log
package fallback

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/ecosense/aqroute/internal/config"
	"github.com/ecosense/aqroute/internal/llm"
	"github.com/ecosense/aqroute/internal/models"
)

// attemptLogCap bounds the in-memory attempt history
const attemptLogCap = 100

// Manager runs model-assisted recovery with uniform envelope handling
type Manager struct {
	cfg           *config.Store
	client        llm.Client
	timeout       time.Duration
	maxRetry      int
	baseThreshold float64

	mu       sync.Mutex
	attempts []models.FallbackAttempt
}

// New builds a manager from the service configuration
func New(cfg *config.Store, client llm.Client, svc *config.Config) *Manager {
	return &Manager{
		cfg:           cfg,
		client:        client,
		timeout:       svc.FallbackTimeout,
		maxRetry:      svc.FallbackMaxRetry,
		baseThreshold: svc.ConfidenceThreshold,
	}
}

// Run invokes the model for a recovery stage. Returns the envelope and
// whether it cleared the stage's acceptance threshold. A nil envelope
// means every attempt failed outright.
func (m *Manager) Run(ctx context.Context, stage models.FallbackStage, question string, contextData map[string]any) (*models.FallbackEnvelope, bool) {
	rc := m.cfg.Get()
	sc, known := rc.Fallback[string(stage)]
	if known && !sc.On() {
		m.record(models.FallbackAttempt{Stage: stage, Err: "stage disabled"})
		return nil, false
	}
	threshold := rc.StageThreshold(string(stage), m.baseThreshold)

	system, user := buildPrompt(stage, question, contextData)

	var envelope *models.FallbackEnvelope
	start := time.Now()
	for attempt := 0; attempt <= m.maxRetry; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, m.timeout)
		env, err := m.client.CompleteEnvelope(attemptCtx, system, user)
		cancel()

		if err != nil {
			log.Printf("[fallback] %s attempt %d failed: %v", stage, attempt+1, err)
			m.record(models.FallbackAttempt{
				Stage: stage, Err: err.Error(),
				ElapsedMS: time.Since(start).Milliseconds(),
			})
			if ctx.Err() != nil {
				return nil, false
			}
			continue
		}

		envelope = env
		accepted := env.Accepted(threshold)
		m.record(models.FallbackAttempt{
			Stage: stage, Action: env.Action, Confidence: env.Confidence,
			Accepted: accepted, ElapsedMS: time.Since(start).Milliseconds(),
		})
		if accepted {
			return env, true
		}
		// A confident rejection is an answer, not a transient failure
		if env.Action == models.ActionRouteToGeneralQuery {
			return env, false
		}
	}
	return envelope, false
}

// Attempts returns a copy of the recent attempt log, newest last
func (m *Manager) Attempts() []models.FallbackAttempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.FallbackAttempt, len(m.attempts))
	copy(out, m.attempts)
	return out
}

func (m *Manager) record(a models.FallbackAttempt) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, a)
	if len(m.attempts) > attemptLogCap {
		m.attempts = m.attempts[len(m.attempts)-attemptLogCap:]
	}
}

func buildPrompt(stage models.FallbackStage, question string, contextData map[string]any) (string, string) {
	system := envelopeContract + "\n\n" + stageInstructions[stage]

	payload := map[string]any{"question": question}
	for k, v := range contextData {
		payload[k] = v
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte(`{"question": "marshal error"}`)
	}
	return system, string(raw)
}

const envelopeContract = `你是空气质量数据查询系统的恢复助手。无论遇到什么情况,你必须只返回一个JSON对象,格式如下:
{"status": "success"或"failed", "action": "continue"或"retry"或"route_to_general_query", "result_data": {...}, "reasoning": "简要说明", "confidence": 0.0到1.0}
不要输出JSON以外的任何内容。`

var stageInstructions = map[models.FallbackStage]string{
	models.FallbackTimeParsing: `用户问题中的时间表达无法被规则解析。请推断用户意图的时间范围,在result_data中返回:
{"time_ranges": [{"start": "2025-06-01 00:00:00", "end": "2025-06-30 23:59:59"}]}`,
	models.FallbackContrastRecovery: `这是一个对比查询,但对比基准时间缺失或无法推导。请根据问题推断对比时间范围,在result_data中返回:
{"contrast_time": {"start": "...", "end": "..."}}`,
	models.FallbackParamSupplement: `查询参数不完整(缺少地点或时间)。请根据问题和上下文补全参数,在result_data中返回缺失的字段,可包括:
{"locations": [{"name": "...", "code": "...", "level": "city|district|station"}], "time_ranges": [...], "time_type": 3|4|5|7|8, "data_source": 0|1|2|3}
如果能给出完整参数集,请全部返回。`,
	models.FallbackAPIErrorRecovery: `报表API调用失败,错误信息在上下文中。判断是否可以调整参数后重试(action=retry并给出修正参数),还是应转交通用查询(action=route_to_general_query)。`,
	models.FallbackResultValidation: `API返回了结果,请判断结果是否合理地回答了用户问题。合理则action=continue,否则action=route_to_general_query。`,
	models.FallbackComplexProcessing: `该问题包含多个时间段,超出单次报表调用能力。请将其拆解或直接给出处理建议,无法拆解时action=route_to_general_query。`,
}
