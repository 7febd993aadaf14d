package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"profnet/application/ports"
	"profnet/domain/core/entities"
)

const (
	// RecommendationPoolSize is how many records are read as candidate
	// collaborators; at most maxListedPeers of them go into the prompt.
	RecommendationPoolSize = 20
	maxListedPeers         = 10
	questionContextSize    = 5

	fallbackUnavailable = "AI 服务当前不可用。"
	fallbackErrorPrefix = "生成内容时出错: "
)

// ErrProviderUnavailable is returned when no model is configured.
var ErrProviderUnavailable = errors.New("llm provider is not available")

var (
	nameRe       = regexp.MustCompile(`[\x{4e00}-\x{9fa5}]{2,4}`)
	findTargetRe = regexp.MustCompile(`(?:查找|寻找|推荐)(?:一位|一个|一些)?\s*(.*?)\s*(?:(?:专家|医生|教授|方面|领域|的|人员|信息)\s*)*[？?。.!！]*$`)

	intentKeywords = []string{"谁是", "查找", "寻找", "介绍", "关于", "研究兴趣", "研究方向", "个人信息", "联系方式", "所属机构", "在哪里工作"}
	findVerbs      = []string{"查找", "寻找", "推荐"}
	roleWords      = map[string]bool{"专家": true, "医生": true, "教授": true}
	fillerWords    = []string{"一下", "请问", "请", "什么", "哪些", "是", "的", "吗", "呢"}
)

// InsightService produces AI write-ups about professionals and answers
// free-text questions using directory records as context.
type InsightService struct {
	provider ports.LLMProvider
	repo     ports.ProfessionalRepository
	logger   *zap.Logger
}

// NewInsightService creates a new insight service
func NewInsightService(provider ports.LLMProvider, repo ports.ProfessionalRepository, logger *zap.Logger) *InsightService {
	return &InsightService{
		provider: provider,
		repo:     repo,
		logger:   logger,
	}
}

// Analyze writes an overview of p's background and opportunities. On failure
// the returned text is a user-facing fallback and err is non-nil.
func (s *InsightService) Analyze(ctx context.Context, p *entities.Professional) (string, error) {
	return s.generate(ctx, "analyze", buildAnalysisPrompt(p), ports.CompletionOptions{Temperature: 0.7, MaxTokens: 1200})
}

// Recommend suggests collaborators for p from pool.
func (s *InsightService) Recommend(ctx context.Context, p *entities.Professional, pool []*entities.Professional) (string, error) {
	return s.generate(ctx, "recommend", buildRecommendationPrompt(p, pool), ports.CompletionOptions{Temperature: 0.7, MaxTokens: 1200})
}

// Answer replies to question, adding matching records as context when the
// question looks like a directory lookup.
func (s *InsightService) Answer(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)

	var dbContext string
	if term := ExtractSearchTerm(question); term != "" {
		s.logger.Debug("question resolved to directory search", zap.String("term", term))
		matches, err := s.repo.Search(ctx, term, questionContextSize+1)
		if err != nil {
			s.logger.Warn("directory search for question context failed", zap.String("term", term), zap.Error(err))
			dbContext = "数据库查询时发生错误。\n"
		} else {
			dbContext = formatContext(matches)
		}
	}

	return s.generate(ctx, "answer", buildQuestionPrompt(question, dbContext), ports.CompletionOptions{Temperature: 0.5, MaxTokens: 1000})
}

func (s *InsightService) generate(ctx context.Context, op, prompt string, opts ports.CompletionOptions) (string, error) {
	if s.provider == nil || !s.provider.IsAvailable() {
		return fallbackUnavailable, ErrProviderUnavailable
	}

	text, err := s.provider.Complete(ctx, prompt, opts)
	if err != nil {
		s.logger.Error("llm completion failed", zap.String("operation", op), zap.Error(err))
		return fallbackErrorPrefix + err.Error(), err
	}
	if strings.TrimSpace(text) == "" {
		return "抱歉，无法生成回复。", errors.New("empty completion")
	}
	return text, nil
}

// ExtractSearchTerm guesses which directory term a question is about. It
// returns "" when the question does not look like a lookup.
//
// A 2-4 character Chinese name combined with an intent keyword wins; failing
// that, the object of a find/recommend verb; failing that, a name in a short
// question.
func ExtractSearchTerm(question string) string {
	name := firstName(question)

	if name != "" && containsAny(question, intentKeywords) {
		return name
	}
	if containsAny(question, findVerbs) {
		m := findTargetRe.FindStringSubmatch(question)
		if m == nil {
			return ""
		}
		target := strings.TrimSpace(m[1])
		if roleWords[target] {
			return ""
		}
		return target
	}
	if name != "" && utf8.RuneCountInString(question) < 15 {
		return name
	}
	return ""
}

// firstName finds the first run of Chinese characters once intent and filler
// words are blanked out, so "谁是张三" yields "张三".
func firstName(question string) string {
	stripped := question
	for _, w := range intentKeywords {
		stripped = strings.ReplaceAll(stripped, w, " ")
	}
	for _, w := range fillerWords {
		stripped = strings.ReplaceAll(stripped, w, " ")
	}
	for _, candidate := range nameRe.FindAllString(stripped, -1) {
		if !roleWords[candidate] {
			return candidate
		}
	}
	return ""
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return entities.UnknownName
	}
	return s
}

func joinInterests(p *entities.Professional) string {
	interests := p.ResearchInterests()
	if len(interests) == 0 {
		return entities.UnknownName
	}
	return strings.Join(interests, ", ")
}

func buildAnalysisPrompt(p *entities.Professional) string {
	achievement := entities.UnknownName
	if len(p.AcademicInfo.Achievements) > 0 {
		achievement = orUnknown(p.AcademicInfo.Achievements[0])
	}

	return fmt.Sprintf(`分析以下专业人员的信息，并提供关于其专业背景、研究兴趣和潜在合作机会的见解:

姓名: %s
性别: %s
职称: %s
所属机构: %s
研究兴趣: %s
成就: %s

请提供以下分析:
1. 该专业人员的专业背景概述
2. 其研究领域的重要性和影响
3. 潜在的研究合作方向和机会
4. 基于其专业背景的未来发展建议
`, p.Name(), orUnknown(p.PersonalInfo.Gender), orUnknown(p.Title()), orUnknown(p.Affiliation()), joinInterests(p), achievement)
}

func buildRecommendationPrompt(p *entities.Professional, pool []*entities.Professional) string {
	var peers strings.Builder
	peers.WriteString("数据库中的其他专业人员示例:\n")
	for i, other := range pool {
		if i >= maxListedPeers {
			peers.WriteString("...等其他多位专业人员。\n")
			break
		}
		if other == nil || other.ID == p.ID {
			continue
		}
		fmt.Fprintf(&peers, "- %s: 研究兴趣(%s)\n", other.Name(), joinInterests(other))
	}

	return fmt.Sprintf(`为以下专业人员推荐潜在的合作伙伴:

目标专业人员姓名: %s
目标研究兴趣: %s

%s
请基于以上信息，推荐最适合与目标专业人员合作的3-5位人选，并说明推荐理由和具体的可能合作方向。
`, p.Name(), strings.Join(p.ResearchInterests(), ", "), peers.String())
}

func formatContext(matches []*entities.Professional) string {
	if len(matches) == 0 {
		return "数据库中未找到完全匹配的相关信息。\n"
	}

	var b strings.Builder
	b.WriteString("根据数据库信息，找到以下可能相关的专业人员：\n\n")
	for i, p := range matches {
		if i >= questionContextSize {
			b.WriteString("...以及其他一些可能相关的结果。\n")
			break
		}
		fmt.Fprintf(&b, "- 姓名: %s\n  职称: %s\n  机构: %s\n  研究兴趣: %s\n\n",
			p.Name(), orUnknown(p.Title()), orUnknown(p.Affiliation()), joinInterests(p))
	}
	return b.String()
}

func buildQuestionPrompt(question, dbContext string) string {
	if dbContext == "" {
		dbContext = "没有从数据库获取到特定上下文信息。"
	}
	return fmt.Sprintf(`你是一个专业人员目录的AI助手。请根据用户的提问，结合下面可能相关的“数据库上下文信息”（如果提供的话）来回答。

数据库上下文信息:
%s
---
用户问题: %s
---
请回答：
`, dbContext, question)
}
