package main

// Run the decision engine against a state export without the API:
//   go run ./cmd/advise -state export.json
//   go run ./cmd/advise -state export.json -mode bear_trap
//   go run ./cmd/advise -state export.json -question "what should I upgrade?"

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/amk92987/wos-optimizer/internal/advice"
	"github.com/amk92987/wos-optimizer/internal/advisor"
	"github.com/amk92987/wos-optimizer/internal/lineup"
	"github.com/amk92987/wos-optimizer/internal/llm"
	"github.com/amk92987/wos-optimizer/internal/llm/gemini"
	openai "github.com/amk92987/wos-optimizer/internal/llm/openai"
	"github.com/amk92987/wos-optimizer/internal/power"
	"github.com/amk92987/wos-optimizer/internal/refdata"
	"github.com/amk92987/wos-optimizer/internal/saves"
	"github.com/amk92987/wos-optimizer/internal/shared/config"
)

type output struct {
	Phase           string                  `json:"phase"`
	Recommendations []advice.Recommendation `json:"recommendations"`
	PowerPlan       []power.Upgrade         `json:"powerPlan"`
	Lineup          *lineup.Lineup          `json:"lineup,omitempty"`
	Answer          *advisor.Answer         `json:"answer,omitempty"`
}

func main() {
	cfg := config.Load()

	statePath := flag.String("state", "", "Path to a player state export (json)")
	mode := flag.String("mode", "", "Game mode to build a lineup for (optional)")
	question := flag.String("question", "", "Free-form question to ask (optional)")
	limit := flag.Int("limit", 10, "Max recommendations")
	provider := flag.String("provider", cfg.LLMProvider, "LLM provider for questions")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	outPath := flag.String("out", "", "Path to write JSON output (optional)")
	flag.Parse()

	if strings.TrimSpace(*statePath) == "" {
		exitErr("state path is required")
	}

	data, err := os.ReadFile(*statePath)
	if err != nil {
		exitErr(fmt.Sprintf("read state: %v", err))
	}

	snap, err := saves.ParseExport(data)
	if err != nil {
		exitErr(fmt.Sprintf("parse state: %v", err))
	}

	tables, err := refdata.Load()
	if err != nil {
		exitErr(fmt.Sprintf("load reference tables: %v", err))
	}

	client, err := buildClient(*provider, *model)
	if err != nil {
		exitErr(err.Error())
	}

	adv := advisor.New(tables, advisor.Config{LLM: client})
	ctx := context.Background()

	recs, err := adv.GetRecommendations(ctx, snap, *limit)
	if err != nil {
		exitErr(fmt.Sprintf("recommendations: %v", err))
	}
	plan, err := adv.GetPowerRecommendations(ctx, snap, 5)
	if err != nil {
		exitErr(fmt.Sprintf("power plan: %v", err))
	}

	out := output{
		Phase:           adv.Phase(snap).Name,
		Recommendations: recs,
		PowerPlan:       plan,
	}

	if strings.TrimSpace(*mode) != "" {
		l, err := adv.GetLineup(ctx, *mode, snap)
		if err != nil {
			exitErr(fmt.Sprintf("lineup: %v", err))
		}
		out.Lineup = &l
	}

	if strings.TrimSpace(*question) != "" {
		answer := adv.Ask(ctx, snap, advisor.AskRequest{Question: *question})
		out.Answer = &answer
	}

	raw, err := json.Marshal(out)
	if err != nil {
		exitErr(fmt.Sprintf("encode output: %v", err))
	}
	pretty, err := prettyJSON(raw)
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}

	if _, err := os.Stdout.Write(pretty); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
	if len(pretty) == 0 || pretty[len(pretty)-1] != '\n' {
		_, _ = os.Stdout.Write([]byte("\n"))
	}
}

func buildClient(provider, model string) (llm.Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openai":
		return openai.NewClient(os.Getenv("OPENAI_API_KEY"), model)
	case "gemini":
		return gemini.NewClient(context.Background(), os.Getenv("GEMINI_API_KEY"), model)
	case "":
		return llm.PlaceholderClient{}, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func prettyJSON(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
