package recommend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"petstore/internal/models"
)

var systemInstructions = []string{
	"You are an expert product recommendation engine for a pet food store catalog.",
	"Your task is to recommend the single best-suited product for the user's pet description, chosen only from the catalog you are given.",
}

var promptTemplate = template.Must(template.New("prompt").Parse(`### INPUT DATA

1. Product fields: id (integer), name (string, at most 255 characters), description (text), quantity (integer), price (decimal), active (bool)

2. Product catalog:
{{.Catalog}}

3. User description:
{{.Description}}

### INSTRUCTIONS

1. Compare the description field of every catalog product with the user description.
2. Return exactly one product.
3. "product_id" must be the id of a catalog product and "name" must be that product's name.

### OUTPUT FORMAT

Return only a JSON object, with no markdown and no other text:
{"product_id": <integer>, "name": "<string>", "reason": "<one sentence justifying the choice>"}
`))

func buildPrompt(candidates []models.Product, description models.PetDescription) (string, error) {
	catalog, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode catalog: %w", err)
	}
	desc, err := json.MarshalIndent(description, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode description: %w", err)
	}

	var buf bytes.Buffer
	err = promptTemplate.Execute(&buf, struct {
		Catalog     string
		Description string
	}{Catalog: string(catalog), Description: string(desc)})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}
