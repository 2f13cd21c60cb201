package llm

// ComparatorInstructions is the fixed instruction sent with every comparison.
const ComparatorInstructions = `You are a product validator. Compare IMAGE, TITLE, and DESCRIPTION.
- If product categories differ (e.g., screwdriver vs masking tape), set verdict=fail.
- Use uncertain only for minor uncertainty.
- Identify conflicts across brand, product_type, color, material (use other for anything else).
- Indicate which pair(s) disagree: image_title, image_description, title_description.
- Provide concise conflicts with values and a short comment.
- Provide minimal supporting attributes for all sources.
Return ONLY JSON matching this schema exactly (no extra text):
{
  "verdict": "pass|uncertain|fail",
  "conflicts": [
    {"attribute": "brand|product_type|color|material|other", "source_pair": "image_title|image_description|title_description", "title_value": string|null, "image_value": string|null, "description_value": string|null, "severity": "minor|major", "comment": string}
  ],
  "pair_disagreements": ["image_title", "image_description", "title_description"],
  "support": {
    "image_attributes": {"brand": string|null, "product_type": string, "color": string|null, "material": string|null},
    "title_attributes": {"brand": string|null, "product_type": string, "color": string|null, "material": string|null},
    "description_attributes": {"brand": string|null, "product_type": string, "color": string|null, "material": string|null}
  },
  "notes": string
}`

// UserPrompt renders the listing text part of a comparison request.
func UserPrompt(title, description string) string {
	return "TITLE: " + title + "\nDESCRIPTION: " + description
}
