// internal/suite/variants.go
package suite

import (
	"fmt"
	"strings"

	"github.com/mwiater/medbench/internal/answer"
	"github.com/mwiater/medbench/internal/dataset"
	"github.com/mwiater/medbench/internal/ollama"
)

// reasoningFormat is the CoT answer scaffold shared by the letter suites.
const reasoningFormat = "Answer the question using the following format:\n" +
	"Reasoning: [Step-by-step logic]\n" +
	"Answer: [Option Letter]"

func init() {
	register(gsm8k())
	register(hellaswag())
	register(mmlu())
	register(mmluPro())
	register(medmcqa())
	register(medqa())
	register(usmle())
	register(usmleStandard())
	register(pubmedqa())
}

func gsm8k() Suite {
	return Suite{
		Name:        "gsm8k",
		Description: "Grade-school math word problems, #### numeric answers",
		Space:       answer.Numbers(),
		Mode:        answer.ModeNumeric,
		Temperature: 0,
		Questions:   25,
		FewShot: []ollama.Message{
			{Role: "user", Content: "There are 15 trees in the grove. Grove workers will plant trees in the grove today. After they are done, there will be 21 trees. How many trees did the grove workers plant today?"},
			{Role: "assistant", Content: "There are 15 trees originally. Then there were 21 trees after some were planted. So there must have been 21 - 15 = 6 trees planted.\n#### 6"},
			{Role: "user", Content: "If there are 3 cars in the parking lot and 2 more cars arrive, how many cars are in the parking lot?"},
			{Role: "assistant", Content: "There are originally 3 cars. 2 more cars arrive. 3 + 2 = 5 cars.\n#### 5"},
			{Role: "user", Content: "Leah had 32 chocolates and her sister had 42. If they ate 35, how many pieces do they have left in total?"},
			{Role: "assistant", Content: "Originally, Leah had 32 chocolates and her sister had 42. So in total they had 32 + 42 = 74. After eating 35, they had 74 - 35 = 39.\n#### 39"},
		},
		Schema: recordSchema("question", "truth"),
		Prompt: func(rec dataset.Record, _ float64) string {
			return rec.Question
		},
		Truth: func(rec dataset.Record) string {
			truth := rec.Truth
			if idx := strings.LastIndex(truth, "####"); idx != -1 {
				truth = truth[idx+4:]
			}
			return strings.TrimSpace(truth)
		},
	}
}

func hellaswag() Suite {
	return Suite{
		Name:        "hellaswag",
		Description: "Commonsense sentence completion, option index 0-3",
		Space:       answer.Digits(0, 3),
		Mode:        answer.ModeDigit,
		Temperature: 0,
		Questions:   25,
		FewShot: []ollama.Message{
			{Role: "user", Content: "Complete the description with the most plausible ending:\n" +
				"Context: A woman is seen sitting in a chair with a pair of scissors. She holds the scissors up to her hair.\n" +
				"Options:\n" +
				"[0] She cuts her own hair.\n" +
				"[1] She stands up and walks away.\n" +
				"[2] She eats the scissors.\n" +
				"[3] She paints the scissors red.\n" +
				"Answer with the correct option number."},
			{Role: "assistant", Content: "0"},
			{Role: "user", Content: "Complete the description with the most plausible ending:\n" +
				"Context: The man is playing a piano on stage. He finishes the song and looks at the audience.\n" +
				"Options:\n" +
				"[0] The audience leaves silently.\n" +
				"[1] The man smashes the piano.\n" +
				"[2] The audience applauds loudly.\n" +
				"[3] The man starts flying.\n" +
				"Answer with the correct option number."},
			{Role: "assistant", Content: "2"},
		},
		Schema: recordSchema("context", "options", "truth"),
		Prompt: func(rec dataset.Record, _ float64) string {
			return fmt.Sprintf("Complete the description with the most plausible ending:\nContext: %s\nOptions:\n%s\nAnswer with the correct option number.",
				rec.Context, indexOptions(rec.Options))
		},
	}
}

func mmlu() Suite {
	return Suite{
		Name:        "mmlu",
		Description: "Medical MMLU subsets, four lettered options with CoT",
		Space:       answer.Letters('A', 'D'),
		Mode:        answer.ModeLetter,
		Temperature: 0.6,
		Questions:   50,
		FewShot: []ollama.Message{
			{Role: "user", Content: "Question: What is the primary mechanism of action of ibuprofen?\n" +
				"Options:\n" +
				"(A) Stimulation of mu-opioid receptors\n" +
				"(B) Inhibition of cyclooxygenase (COX) enzymes\n" +
				"(C) Blockade of sodium channels\n" +
				"(D) Antagonism of H1 receptors\n" +
				reasoningFormat},
			{Role: "assistant", Content: "Reasoning: Ibuprofen is a nonsteroidal anti-inflammatory drug (NSAID). " +
				"NSAIDs work by inhibiting the cyclooxygenase (COX) enzymes, which converts arachidonic acid to prostaglandins. " +
				"Opioids stimulate mu-receptors (A). Local anesthetics block sodium channels (C). Antihistamines block H1 (D). " +
				"Therefore, the mechanism is COX inhibition.\n" +
				"Answer: B"},
		},
		Schema: recordSchema("question", "options", "truth"),
		Prompt: letteredPrompt,
	}
}

func mmluPro() Suite {
	return Suite{
		Name:        "mmlu-pro",
		Description: "MMLU-Pro health category, up to ten lettered options",
		Space:       answer.Letters('A', 'J'),
		Mode:        answer.ModeLetter,
		Temperature: 0.6,
		Questions:   10,
		FewShot: []ollama.Message{
			{Role: "user", Content: "Question: A patient presents with elevated localized pruritus. Which of the following is the most appropriate initial pharmacologic treatment?\n" +
				"Options:\n" +
				"(A) Oral prednisone\n(B) Topical hydrocortisone\n(C) IV diphenhydramine\n(D) Oral cephalexin\n" +
				"(E) Topical mupirocin\n(F) Oral loratadine\n(G) Topical capsaicin\n(H) IV epinephrine\n" +
				"(I) Oral ibuprofen\n(J) Topical lidocaine\n" +
				reasoningFormat},
			{Role: "assistant", Content: "Reasoning: The patient has localized pruritus (itching). Systemic steroids (A) or IV antihistamines (C) are too aggressive for a localized issue. " +
				"Antibiotics (D, E) treat infection, not itching. " +
				"Topical hydrocortisone is a low-potency steroid specifically indicated for localized inflammation and pruritus. " +
				"It is the standard first-line conservative therapy.\n" +
				"Answer: B"},
		},
		Schema: recordSchema("question", "options", "truth"),
		Prompt: letteredPrompt,
	}
}

func medmcqa() Suite {
	return Suite{
		Name:        "medmcqa",
		Description: "Indian medical entrance MCQs, confidence-gated",
		Space:       answer.Letters('A', 'D'),
		Mode:        answer.ModeLetter,
		Gated:       true,
		Threshold:   0.75,
		Temperature: 0.6,
		Questions:   50,
		System: "You are a medical AI assistant taking a clinical exam.\n" +
			"1. Answer based ONLY on your internal medical knowledge.\n" +
			"2. Determine your confidence (0.0 to 1.0) before answering.\n" +
			"3. If you are unsure, output 'REFUSAL'.\n\n" +
			"Format your response exactly like this:\n" +
			"Confidence: [Number]\n" +
			"Reasoning: [One sentence explanation]\n" +
			"Answer: [Option Letter A/B/C/D or REFUSAL]",
		FewShot: []ollama.Message{
			{Role: "user", Content: "Question: A 24-year-old female presents with anemia. Peripheral smear shows spherocytes. Which test confirms the diagnosis?\n" +
				"Options:\n(A) Coombs test\n(B) Osmotic fragility test\n(C) Hb electrophoresis\n(D) Bone marrow aspiration\n\n" +
				"Constraint: SAFE. Answer with Option Letter ONLY if confidence >= 0.0."},
			{Role: "assistant", Content: "Confidence: 0.95\nReasoning: Spherocytes on peripheral smear suggest Hereditary Spherocytosis, which is confirmed by the Osmotic Fragility Test.\nAnswer: B"},
		},
		Schema: recordSchema("question", "options", "truth"),
		Prompt: gatedLetterPrompt,
	}
}

func medqa() Suite {
	return Suite{
		Name:        "medqa",
		Description: "MedQA USMLE four-option questions with CoT",
		Space:       answer.Letters('A', 'D'),
		Mode:        answer.ModeLetter,
		Temperature: 0.6,
		Questions:   25,
		FewShot: []ollama.Message{
			{Role: "user", Content: "Question: A 65-year-old man presents with sudden severe tearing chest pain radiating to the back. BP is 180/110 right arm, 130/70 left arm. Best diagnostic step?\n" +
				"Options:\n(A) Echo\n(B) CT Angiography\n(C) MRI\n(D) Coronary Angio\n" +
				reasoningFormat},
			{Role: "assistant", Content: "Reasoning: The patient describes 'tearing' chest pain radiating to the back, which is classic for aortic dissection. " +
				"The blood pressure discrepancy between arms further supports this. " +
				"Coronary angiography is for heart attacks (MI). MRI is too slow for an emergency. " +
				"CT Angiography is the gold standard for diagnosing aortic dissection in a stable patient.\n" +
				"Answer: B"},
		},
		Schema: recordSchema("question", "options", "truth"),
		Prompt: letteredPrompt,
	}
}

const usmleSystem = "You are an expert physician taking the USMLE Step 2 Clinical Knowledge exam.\n" +
	"1. Read the patient vignette carefully.\n" +
	"2. Answer based ONLY on clinical guidelines.\n" +
	"3. Determine your confidence (0.0 to 1.0).\n" +
	"4. If you are unsure, output 'REFUSAL'.\n\n" +
	"Format your response exactly like this:\n" +
	"Confidence: [Number]\n" +
	"Reasoning: [Step-by-step clinical reasoning]\n" +
	"Answer: [Option Letter A/B/C/D or REFUSAL]"

var usmleOneShot = []ollama.Message{
	{Role: "user", Content: "Question: A 32-year-old woman comes to the office because of a 3-month history of fatigue and generalized weakness. She has no history of serious illness. Physical examination shows no abnormalities. Laboratory studies show:\n" +
		"Hemoglobin: 9.2 g/dL\nMCV: 72 fL\nFerritin: 10 ng/mL\n" +
		"Which of the following is the most appropriate next step in management?\n" +
		"Options:\n(A) Intravenous iron dextran\n(B) Oral ferrous sulfate\n(C) Erythropoietin injection\n(D) RBC transfusion\n\n" +
		"Constraint: SAFE. Answer with Option Letter ONLY if confidence >= 0.0."},
	{Role: "assistant", Content: "Confidence: 0.95\nReasoning: The patient has iron deficiency anemia (Microcytic anemia with low Ferritin). The first-line treatment for stable iron deficiency anemia is oral iron supplementation.\nAnswer: B"},
}

func usmle() Suite {
	return Suite{
		Name:        "usmle",
		Description: "USMLE Step 2 CK vignettes, confidence-gated",
		Space:       answer.Letters('A', 'D'),
		Mode:        answer.ModeLetter,
		Gated:       true,
		Threshold:   0.75,
		Temperature: 0.6,
		Questions:   25,
		System:      usmleSystem,
		FewShot:     usmleOneShot,
		Schema:      recordSchema("question", "options", "truth"),
		Prompt:      gatedLetterPrompt,
	}
}

func usmleStandard() Suite {
	return Suite{
		Name:        "usmle-standard",
		Description: "USMLE Step 2 CK vignettes, ungated control",
		Space:       answer.Letters('A', 'D'),
		Mode:        answer.ModeLetter,
		Temperature: 0.6,
		Questions:   25,
		System: "You are an expert physician taking the USMLE Step 2 Clinical Knowledge exam.\n" +
			"1. Read the patient vignette carefully.\n" +
			"2. Answer based ONLY on clinical guidelines.\n\n" +
			"Format your response exactly like this:\n" +
			"Reasoning: [Step-by-step clinical reasoning]\n" +
			"Answer: [Option Letter A/B/C/D]",
		FewShot: []ollama.Message{
			{Role: "user", Content: "Question: A 32-year-old woman comes to the office because of a 3-month history of fatigue... [Clinical details] ...\n" +
				"Options:\n(A) Intravenous iron dextran\n(B) Oral ferrous sulfate\n(C) Erythropoietin injection\n(D) RBC transfusion\n\n" +
				"Answer with the correct Option Letter."},
			{Role: "assistant", Content: "Reasoning: The patient has iron deficiency anemia (Microcytic anemia with low Ferritin). The first-line treatment for stable iron deficiency anemia is oral iron supplementation.\nAnswer: B"},
		},
		Schema: recordSchema("question", "options", "truth"),
		Prompt: func(rec dataset.Record, _ float64) string {
			return fmt.Sprintf("Question: %s\nOptions:\n%s\n\nAnswer with the correct Option Letter.",
				rec.Question, letterOptions(rec.Options))
		},
	}
}

func pubmedqa() Suite {
	return Suite{
		Name:        "pubmedqa",
		Description: "PubMedQA abstract questions, yes/no/maybe, confidence-gated",
		Space:       answer.Labels("yes", "no", "maybe"),
		Mode:        answer.ModeLabel,
		Gated:       true,
		Threshold:   0.75,
		Temperature: 0.6,
		Questions:   50,
		System: "You are a medical AI assistant.\n" +
			"1. Answer based ONLY on the provided context.\n" +
			"2. Determine your confidence (0.0 to 1.0) before answering.\n" +
			"3. If the context is missing or irrelevant, output 'REFUSAL'.\n\n" +
			"Format your response exactly like this:\n" +
			"Confidence: [Number]\n" +
			"Reasoning: [One sentence explanation]\n" +
			"Answer: [yes/no/maybe or REFUSAL]",
		FewShot: []ollama.Message{
			{Role: "user", Content: "Context: A randomized trial showed that Drug X reduced mortality by 20% compared to placebo (p<0.01).\n" +
				"Question: Is Drug X effective for reducing mortality?\n\n" +
				"Constraint: SAFE. Answer with 'yes', 'no', or 'maybe' ONLY if confidence >= 0.0."},
			{Role: "assistant", Content: "Confidence: 0.95\nReasoning: The trial demonstrated a statistically significant reduction in mortality.\nAnswer: yes"},
		},
		Schema: recordSchema("context", "question", "truth"),
		Prompt: func(rec dataset.Record, threshold float64) string {
			return fmt.Sprintf("Context: %s\nQuestion: %s\n\nConstraint: SAFE. Answer with 'yes', 'no', or 'maybe' ONLY if confidence >= %v. Otherwise say REFUSAL.",
				rec.Context, rec.Question, threshold)
		},
	}
}

func letteredPrompt(rec dataset.Record, _ float64) string {
	return fmt.Sprintf("Question: %s\nOptions:\n%s\n%s", rec.Question, letterOptions(rec.Options), reasoningFormat)
}

func gatedLetterPrompt(rec dataset.Record, threshold float64) string {
	return fmt.Sprintf("Question: %s\nOptions:\n%s\n\nConstraint: SAFE. Answer with Option Letter ONLY if confidence >= %v. Otherwise say REFUSAL.",
		rec.Question, letterOptions(rec.Options), threshold)
}
