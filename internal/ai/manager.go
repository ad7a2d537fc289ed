package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

type ManagerConfig struct {
	Timeout       int
	MaxInputChars int
}

type Manager struct {
	answerer      IGenerator
	summarizer    IGenerator
	questioner    IGenerator
	conceptWriter IGenerator
	embedder      IEmbedder
	cfg           ManagerConfig
}

func NewManager(
	answerer IGenerator,
	summarizer IGenerator,
	questioner IGenerator,
	conceptWriter IGenerator,
	embedder IEmbedder,
	cfg ManagerConfig,
) *Manager {
	return &Manager{
		answerer:      answerer,
		summarizer:    summarizer,
		questioner:    questioner,
		conceptWriter: conceptWriter,
		embedder:      embedder,
		cfg:           cfg,
	}
}

func (m *Manager) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	if m.embedder == nil {
		return nil, fmt.Errorf("embedder not configured")
	}
	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(m.cfg.Timeout)*time.Second)
		defer cancel()
	}
	values, err := m.embedder.Embed(ctx, m.truncate(text), taskType)
	if err != nil {
		return nil, Classify(err)
	}
	return values, nil
}

// Answer replies to a question grounded in the supplied document text.
func (m *Manager) Answer(ctx context.Context, docContext string, question string) (string, error) {
	if m.answerer == nil {
		return "", fmt.Errorf("answerer not configured")
	}
	prompt := fmt.Sprintf(`You are a helpful reading assistant.
Answer the question using ONLY the document below.
- If the document does not contain the answer, say so plainly.
- Use the same language as the question.
- Output ONLY the answer text.

DOCUMENT:
%s

QUESTION:
%s`, m.truncate(docContext), question)
	return m.generateText(ctx, m.answerer, prompt)
}

// Summarize condenses the document into a short paragraph.
func (m *Manager) Summarize(ctx context.Context, text string) (string, error) {
	if m.summarizer == nil {
		return "", fmt.Errorf("summarizer not configured")
	}
	prompt := fmt.Sprintf(`You are a helpful assistant.
Summarize the following document into a concise paragraph (2-4 sentences).
- Use the same language as the content.
- Keep factual accuracy and key points.
- Output ONLY the summary text.

CONTENT:
%s`, m.truncate(text))
	return m.generateText(ctx, m.summarizer, prompt)
}

// GenerateQuestions produces suggested reader questions for the document.
// The number of questions scales with the document length.
func (m *Manager) GenerateQuestions(ctx context.Context, text string) ([]string, error) {
	if m.questioner == nil {
		return nil, fmt.Errorf("questioner not configured")
	}
	count := questionCountFor(len(text))
	prompt := fmt.Sprintf(`You are a reading comprehension assistant.
From the document below, write exactly %d questions a curious reader would ask.
- Each question must be answerable from the document alone.
- Each question must end with a question mark.
- Use the same language as the content.
- Return a JSON array of strings only. No extra text.

CONTENT:
%s`, count, m.truncate(text))
	result, err := m.generateText(ctx, m.questioner, prompt)
	if err != nil {
		return nil, err
	}
	return parseQuestions(result, count)
}

// VideoConcept drafts a short title and visual concept for a video prompt.
func (m *Manager) VideoConcept(ctx context.Context, prompt string, style string, duration int) (title string, concept string, err error) {
	if m.conceptWriter == nil {
		return "", "", fmt.Errorf("concept writer not configured")
	}
	fullPrompt := fmt.Sprintf(`You are a video producer.
Draft a production concept for a %d second %s video based on the idea below.
- First line: a short title (under 10 words), no label.
- Remaining lines: a 2-3 sentence visual concept.
- Output ONLY the title and concept.

IDEA:
%s`, duration, style, prompt)
	result, err := m.generateText(ctx, m.conceptWriter, fullPrompt)
	if err != nil {
		return "", "", err
	}
	lines := strings.SplitN(result, "\n", 2)
	title = strings.TrimSpace(lines[0])
	if len(lines) > 1 {
		concept = strings.TrimSpace(lines[1])
	}
	return title, concept, nil
}

func (m *Manager) generateText(ctx context.Context, gen IGenerator, prompt string) (string, error) {
	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(m.cfg.Timeout)*time.Second)
		defer cancel()
	}
	resp, err := gen.Generate(ctx, prompt)
	if err != nil {
		return "", Classify(err)
	}
	text := strings.TrimSpace(resp)
	if text == "" {
		return "", fmt.Errorf("empty ai response")
	}
	return text, nil
}

func (m *Manager) truncate(text string) string {
	if m.cfg.MaxInputChars > 0 && len(text) > m.cfg.MaxInputChars {
		return text[:m.cfg.MaxInputChars]
	}
	return text
}

// questionCountFor scales the suggestion count with document length in
// bytes: 3 for short texts up to 12 for anything beyond 10k characters.
func questionCountFor(length int) int {
	switch {
	case length > 10000:
		return 12
	case length > 5000:
		return 10
	case length > 3000:
		return 7
	case length > 1000:
		return 5
	default:
		return 3
	}
}

var questionPattern = regexp.MustCompile(`"([^"]*\?[^"]*)"`)

// parseQuestions reads the model output as a JSON string array, stripping
// code fences first. When the output is not valid JSON it falls back to
// scraping quoted strings that contain a question mark.
func parseQuestions(output string, max int) ([]string, error) {
	clean := strings.TrimSpace(output)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)
	start := strings.Index(clean, "[")
	end := strings.LastIndex(clean, "]")
	if start >= 0 && end > start {
		clean = clean[start : end+1]
	}

	var questions []string
	if err := json.Unmarshal([]byte(clean), &questions); err != nil {
		questions = nil
		for _, match := range questionPattern.FindAllStringSubmatch(output, -1) {
			questions = append(questions, match[1])
		}
	}
	uniq := make([]string, 0, len(questions))
	seen := make(map[string]bool)
	for _, question := range questions {
		normalized := strings.TrimSpace(question)
		if normalized == "" {
			continue
		}
		key := strings.ToLower(normalized)
		if seen[key] {
			continue
		}
		seen[key] = true
		uniq = append(uniq, normalized)
		if len(uniq) >= max {
			break
		}
	}
	if len(uniq) == 0 {
		return nil, fmt.Errorf("no questions found")
	}
	return uniq, nil
}
