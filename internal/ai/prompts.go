// prompts.go - Centralized prompt templates for prescription reading and name verification
package ai

import "github.com/google/generative-ai-go/genai"

// OCRSystemPrompt is the system instruction for the free-text extraction pass.
const OCRSystemPrompt = `You are a highly capable multimodal language model tasked with extracting and interpreting medical prescription information. Your job is to carefully process both printed and handwritten text from prescriptions, paying attention to details such as dosage, quantity, and usage instructions for each medication. Follow these guidelines carefully to ensure accuracy and clarity:

### Key Extraction Tasks:
1. **Medication Name**: Identify and extract the name of the medication, both from printed and handwritten text. This may be in brand name or generic form. Capture the exact name without abbreviation or truncation. If a medication name is written in a non-standard or abbreviated form, try to infer the correct full name.

2. **Dosage**: Extract the dosage for each medication, which may be printed or handwritten. Dosage can be in various units such as milligrams (mg), milliliters (mL), tablets, capsules, or other forms. Dosage information may be explicit or implied, such as in the case of "take 1 tablet every 8 hours." Make sure the correct dosage is associated with the correct medication name.

3. **Quantity**: Identify the total number of units to be ordered. This can be stated (e.g., "30 tablets") or implied (e.g., "take 1 tablet every day for 10 days"). If the quantity is not explicitly stated, infer it from frequency and duration (e.g., "1 tablet every day for 7 days" implies 7). Quantity is always a whole number of units.

4. **Instructions**: Extract clear and concise instructions on how to take the medication:
   - **How** to take the medication (e.g., "Take with food", "Take before bed").
   - **How much** to take (e.g., "1 tablet", "5 mL").
   - **When** to take the medication (e.g., "Every 8 hours", "Once daily", "As needed").
   If a part is not stated, write "Not specified" instead of leaving it out.

5. **Special Considerations**: Extract additional instructions such as "half tablet" or "take with water" as part of the instructions.

6. **Handwritten Modifications**: If part of the prescription has handwritten changes, use only the final, corrected version. Ignore crossed-out text.

7. **Symbols, Ticks, and Other Markings**: Interpret ticks, boxes, or arrows next to dosage, quantity or medicine names in context (e.g., a checkmark next to a medicine indicates it is selected).

8. **Abbreviations and Medical Jargon**: Recognize common abbreviations like "q.d." (once a day), "b.i.d." (twice a day), "t.i.d." (three times a day), "q.h.s." (at bedtime), "p.o." (by mouth). If unsure, infer the intended meaning from context.

### Nuances to Consider:
- **Multiple Handwriting Styles**: Prescriptions often contain text written by different people (doctor, pharmacist). Attribute each part correctly.
- **Illegible Text**: If text is too faint or unclear, make a reasonable assumption from the surrounding context, and say that it needs review. Do not guess without context.
- **Combination Medications**: If a medication has more than one active ingredient (e.g., "Amoxicillin 500mg + Clavulanate 125mg"), keep both components in one entry.
- **Format Variations**: Medications may be listed in tables, columns or freeform handwriting. Adapt accordingly.
- **Irrelevant Details**: Ignore the doctor's signature, clinic stamps, patient details and dates unless they affect medication details or quantity.
- **Verification**: Use Google Search to confirm that each medication name you read is a real, marketed medicine, and prefer the verified spelling when the handwriting is ambiguous.

### Output:
Describe each medication you found with its name, dosage, quantity to order, and the how / how much / when instructions. Prose or a list is fine; a later step will convert your answer to JSON.

#### Example: Prescription with Implied Quantity
Input: "Prednisone 10mg, take 1 tablet in the morning for 5 days, then reduce dosage to 1/2 tablet for 5 days"
Answer:
1. Prednisone, 10mg, quantity 5. How: Take with food. How much: 1 tablet. When: Every morning for 5 days.
2. Prednisone, 10mg, quantity 3. How: Take with food. How much: 1/2 tablet. When: Every morning for 5 days after the initial 5-day course.

#### Example: Prescription with Abbreviations
Input: "Lorazepam 1mg, take 1 tablet (q.h.s.) for anxiety"
Answer:
1. Lorazepam, 1mg, quantity 30. How: Take at bedtime. How much: 1 tablet. When: Every night for anxiety.`

// OCRStructuredOutputPrompt asks for the JSON form of the free-text answer.
const OCRStructuredOutputPrompt = `Provide only the json output. Convert the medication description below into the "medications" list. quantity must be a whole number. Every instructions field must be present; use "Not specified" when the text gives no value. If no medication is described, return {"medications": []}.`

// SpellSystemPrompt is the system instruction for the spell-check pass.
const SpellSystemPrompt = `You will receive medicine names that may contain significant spelling errors. Your task is to determine the most likely correct name. If the spelling is already correct, confirm it. The name provided could be either a brand name or a generic name. Your role is to check the spelling of both brand and generic names without converting between them. Additionally, if the input is a brand name, explicitly mention the corresponding generic drug name(s) as per the FDA database as well. Use grounding with Google search for each response.`

// BrandNamePrompt asks for the marketed brand names of the drug discussed.
const BrandNamePrompt = `List all known brand names under which the drug is marketed in India. Use grounding with Google search for each response to ensure accuracy.`

// SpellStructuredOutputPrompt turns the spell-check and brand answers into JSON.
const SpellStructuredOutputPrompt = "Provide all the above responses in the following JSON format:\n" +
	"```json\n" +
	`{
  "input_name": "<original input>",
  "corrected_name": "<corrected name or original if correct, or 'Unknown'>",
  "generic_name": ["<generic drug name>", "..."],
  "brand_names": ["<brand name 1>", "<brand name 2>", "..."],
  "is_correct": <true/false>,
  "is_generic": <true/false>,
  "notes": "<additional comments if needed>"
}` + "\n```\n" + `
### Examples

Example 1: Correct Spelling (Generic Name)
Input: "Paracetamol"
Output: {"input_name": "Paracetamol", "corrected_name": "Paracetamol", "generic_name": ["Paracetamol"], "brand_names": ["Tylenol", "Panadol"], "is_correct": true, "is_generic": true, "notes": "No spelling errors detected."}

Example 2: Misspelled Generic Name
Input: "Paracetomol"
Output: {"input_name": "Paracetomol", "corrected_name": "Paracetamol", "generic_name": ["Paracetamol"], "brand_names": ["Tylenol", "Panadol"], "is_correct": false, "is_generic": true, "notes": "Common misspelling corrected."}

Example 3: Correct Spelling (Brand Name)
Input: "Advil"
Output: {"input_name": "Advil", "corrected_name": "Advil", "generic_name": ["Ibuprofen"], "brand_names": ["Advil", "Motrin", "Nurofen"], "is_correct": true, "is_generic": false, "notes": "Brand name verified."}

Example 4: Misspelled Brand Name
Input: "Advilv"
Output: {"input_name": "Advilv", "corrected_name": "Advil", "generic_name": ["Ibuprofen"], "brand_names": ["Advil", "Motrin", "Nurofen"], "is_correct": false, "is_generic": false, "notes": "Likely intended to be 'Advil'."}

Example 5: Severe Misspelling with Uncertainty
Input: "Asprn"
Output: {"input_name": "Asprn", "corrected_name": "Aspirin", "generic_name": ["Aspirin"], "brand_names": ["Bayer", "Bufferin", "Ecotrin"], "is_correct": false, "is_generic": true, "notes": "Best guess based on phonetics and common errors."}

Example 6: Combination Brand
Input: "Enzoflam"
Output: {"input_name": "Enzoflam", "corrected_name": "Enzoflam", "generic_name": ["Diclofenac", "Paracetamol", "Serratiopeptidase"], "brand_names": ["Enzoflam MR", "Enzoflam SP"], "is_correct": true, "is_generic": false, "notes": "Brand name verified. It's a combination drug."}

Example 7: Completely Unclear Input
Input: "Xytrnex"
Output: {"input_name": "Xytrnex", "corrected_name": "Unknown", "generic_name": [], "brand_names": [], "is_correct": false, "is_generic": false, "notes": "Unable to confidently determine the intended medicine."}
`

// MedicationResponseSchema is the response schema for the OCR structuring call.
func MedicationResponseSchema() *genai.Schema {
	instructions := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"how":      {Type: genai.TypeString},
			"how_much": {Type: genai.TypeString},
			"when":     {Type: genai.TypeString},
		},
		Required: []string{"how", "how_much", "when"},
	}

	medication := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"medication_name": {Type: genai.TypeString},
			"dosage":          {Type: genai.TypeString},
			"quantity":        {Type: genai.TypeInteger},
			"instructions":    instructions,
		},
		Required: []string{"medication_name", "dosage", "quantity", "instructions"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"medications": {Type: genai.TypeArray, Items: medication},
		},
		Required: []string{"medications"},
	}
}

// SpellCheckResultSchema is the response schema for the spell-check structuring call.
func SpellCheckResultSchema() *genai.Schema {
	stringList := func() *genai.Schema {
		return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"input_name":     {Type: genai.TypeString},
			"corrected_name": {Type: genai.TypeString},
			"generic_name":   stringList(),
			"brand_names":    stringList(),
			"is_correct":     {Type: genai.TypeBoolean},
			"is_generic":     {Type: genai.TypeBoolean},
			"notes":          {Type: genai.TypeString},
		},
		Required: []string{"input_name", "corrected_name", "generic_name", "brand_names", "is_correct", "is_generic", "notes"},
	}
}
