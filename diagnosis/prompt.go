package diagnosis

import "fmt"

type template struct {
	system string
	user   string
}

var templates = map[Language]template{
	English: {
		system: "You are a professional emotional and psychological AI analyst.",
		user: `Face emotion analysis: %s
Speech content: %s

Provide a unified emotional diagnosis by combining facial expression and speech analysis.

Your response must include:
1) Clear explanation of the person's emotional state.
2) Interpretation of psychological condition.
3) If emotional state is negative → provide practical steps to improve mood and mental state.
4) If emotional state is positive → provide advice to maintain and strengthen well-being.

Response must be clear, supportive, and professional.`,
	},
	Arabic: {
		system: "أنت خبير تحليل نفسي وعاطفي احترافي.",
		user: `تحليل تعابير الوجه: %s
محتوى الكلام: %s

قدم تشخيصًا عاطفيًا موحدًا يجمع بين تحليل الصورة والصوت.

يجب أن يتضمن الرد:
1) شرح واضح للحالة العاطفية للشخص.
2) تفسير للحالة النفسية العامة.
3) إذا كانت الحالة سلبية → قدم خطوات عملية لتحسين المزاج والحالة النفسية.
4) إذا كانت الحالة إيجابية → قدم نصائح للحفاظ على التوازن النفسي وتعزيز الحالة الجيدة.

اجعل الرد داعمًا وواضحًا واحترافيًا.`,
	},
}

// Prompt returns the system and user messages for lang. Unknown languages
// use the Arabic template.
func Prompt(lang Language, emotion, transcript string) (system, user string) {
	t, ok := templates[lang]
	if !ok {
		t = templates[Arabic]
	}
	return t.system, fmt.Sprintf(t.user, emotion, transcript)
}
