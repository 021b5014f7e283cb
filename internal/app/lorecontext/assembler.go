package lorecontext

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/PabloGalante/lorekeeper/internal/domain"
)

// PolicyInstruction bounds the AI to the supplied context.
const PolicyInstruction = `You are a helpful assistant and lore master for a world created in World Anvil. ` +
	`Your knowledge is strictly limited to the information provided in the "CONTEXT" section below. ` +
	`Do not use any external knowledge or make up information. ` +
	`If the answer is not in the context, state that you cannot find that information within the provided lore. ` +
	`When you reference an article, you may link it as [title](relative-url). ` +
	`Answer in a clear and helpful manner, as if you are a scholar of this specific world.`

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Assembler turns a snapshot and a question into a prompt. It has no side effects.
type Assembler struct {
	format Format
}

func NewAssembler(format Format) *Assembler {
	if format != FormatYAML {
		format = FormatJSON
	}
	return &Assembler{format: format}
}

// Serialize renders the snapshot document as context text.
func (a *Assembler) Serialize(snap *domain.WorldSnapshot) (string, error) {
	if snap == nil || len(snap.Raw) == 0 {
		return "{}", nil
	}

	if a.format == FormatJSON {
		return string(snap.Raw), nil
	}

	var doc any
	if err := json.Unmarshal(snap.Raw, &doc); err != nil {
		return "", fmt.Errorf("decode snapshot: %w", err)
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode snapshot as yaml: %w", err)
	}
	return string(out), nil
}

// Build serializes snap and combines it with question.
func (a *Assembler) Build(snap *domain.WorldSnapshot, question string) (domain.Prompt, error) {
	ctx, err := a.Serialize(snap)
	if err != nil {
		return domain.Prompt{}, err
	}
	return BuildPrompt(ctx, question), nil
}

// BuildPrompt frames an already serialized context and the verbatim question.
func BuildPrompt(context, question string) domain.Prompt {
	var user strings.Builder
	user.WriteString("CONTEXT:\n---\n")
	user.WriteString(context)
	user.WriteString("\n---\n\nQUESTION:\n")
	user.WriteString(question)

	return domain.Prompt{
		System: PolicyInstruction,
		User:   user.String(),
	}
}
