package ai

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"
)

//go:embed prompts/box_score.md
var boxScorePromptRaw string

// BoxScoreTemplate is the parsed prompt template for box score prediction.
// Parsed once at package init; reused on every request.
var BoxScoreTemplate = template.Must(template.New("box_score").Parse(boxScorePromptRaw))

// RenderBoxScorePrompt embeds both data strings verbatim into the prompt.
func RenderBoxScorePrompt(historicalData, futureBoxInfo string) (string, error) {
	var buf bytes.Buffer
	if err := BoxScoreTemplate.Execute(&buf, struct {
		HistoricalData string
		FutureBoxInfo  string
	}{
		HistoricalData: historicalData,
		FutureBoxInfo:  futureBoxInfo,
	}); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}
