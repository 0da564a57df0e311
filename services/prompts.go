package services

import (
	"fmt"
	"strings"

	"debatearena/locale"
	"debatearena/models"
)

type promptSet struct {
	userLabel     string
	aiLabel       string
	stancePro     string
	stanceCon     string
	turnSystem    string // %[1]s topic, %[2]s user's stance
	historyHeader string
	nextTurnCue   string
	report        string // %s transcript
	argumentMap   string // %s transcript
}

var turkishPrompts = promptSet{
	userLabel: "Kullanıcı",
	aiLabel:   "AI Münazır",
	stancePro: "destekleyici",
	stanceCon: "karşıt",
	turnSystem: `Sen, 'Münazara Arenası' platformunun yapay zeka münazırısın. Görevin, kullanıcıyla seçilen bir konu üzerinde mantık ve kanıta dayalı bir münazara yapmaktır.

Kuralların:
1. Her zaman saygılı, objektif ve tarafsız bir dil kullan. Asla saldırgan veya kişisel olma.
2. Kullanıcının argümanlarını dikkatle analiz et ve doğrudan bu argümanlara cevap ver. Konuyu dağıtma.
3. Kendi argümanlarını desteklemek için genel bilgi, istatistik veya mantıksal çıkarımlar kullan. Ancak 'Ben bir yapay zekayım' gibi ifadelerden kaçın. Rolünü oyna.
4. Kullanıcının yaptığı mantık hatalarını (örneğin, adam karalama, korkuluk safsatası) fark et, ancak bunları münazara sırasında yüzüne vurma. Bu bilgiyi final raporu için sakla.
5. Cevapların net, anlaşılır ve 2-3 paragrafı geçmeyecek uzunlukta olsun.

Şu anki konumuz: "%[1]s". Kullanıcı bu konuda "%[2]s" tarafı savunuyor. Sen ise karşı tarafı savunacaksın. Sohbet geçmişini dikkate alarak sadece sıradaki cevabını ver.`,
	historyHeader: "---SOHBET GEÇMİŞİ---",
	nextTurnCue:   "AI Münazır'ın sıradaki cevabı:",
	report: `Aşağıda bir kullanıcı ile senin aranda geçen münazaranın tam metni bulunmaktadır. Bu metni bir münazara eğitmeni gibi analiz et ve aşağıdaki kriterlere göre bir performans raporu oluştur. Çıktıyı mutlaka geçerli bir JSON formatında ver.

Münazara Metni:
"""
%s
"""

JSON Formatında İstenen Rapor Şeması:
{
  "enGucluArguman": "Kullanıcının sunduğu en güçlü ve ikna edici argümanı buraya özetle.",
  "gelistirilmesiGerekenNokta": {
    "tespitEdilenHata": "Kullanıcının yaptığı en belirgin mantık hatası veya zayıf argümanı buraya yaz. Örneğin: 'Kullanıcı, karşı argümanı basitleştirerek bir Korkuluk Safsatası (Straw Man) yapmıştır.'",
    "onerilenGelistirme": "Bu hatayı nasıl düzeltebileceğine dair kısa bir tavsiye ver."
  },
  "iknaEdicilikPuani": "Kullanıcının genel performansına 1'den 10'a kadar bir puan ver (sadece sayı).",
  "genelYorum": "Kullanıcının performansına dair 1-2 cümlelik genel bir eğitmen yorumu ekle."
}`,
	argumentMap: `Aşağıdaki münazara metnini analiz et ve metindeki mantıksal akışı temsil eden bir Mermaid.js şeması oluştur.

Kurallar:
1. Çıktı, sadece ve sadece geçerli bir Mermaid.js ` + "`graph TD`" + ` (Top-Down) sözdizimi içermelidir.
2. Kullanıcının ana argümanlarını özetleyerek dikdörtgen kutular içine al. Örn: A["Ana Argüman 1"].
3. Kullanıcının bu ana argümanları desteklemek için sunduğu alt fikirleri veya örnekleri yuvarlak kenarlı kutular içine al. Örn: B("Destekleyici Fikir 1.1").
4. AI Münazır'ın, kullanıcının argümanlarına veya fikirlerine getirdiği karşı argümanları eşkenar dörtgen (rhombus) şekli içine al. Örn: C{"Karşı Argüman 1"}.
5. Okları (` + "`-->`" + `) kullanarak argümanlar, destekleyici fikirler ve karşı argümanlar arasındaki mantıksal bağlantıyı göster.
6. Metinleri kısa ve öz tut, cümlenin tamamını değil, fikrin özetini yaz.
7. Yanıtın doğrudan 'graph TD' ile başlamalıdır. Öncesinde veya sonrasında başka hiçbir metin, açıklama veya kod bloğu olmamalıdır.

Münazara Metni:
"""
%s
"""

Mermaid.js Çıktısı:`,
}

var englishPrompts = promptSet{
	userLabel: "User",
	aiLabel:   "AI Debater",
	stancePro: "for",
	stanceCon: "against",
	turnSystem: `You are the AI debater of the 'Debate Arena' platform. Your task is to hold a logical, evidence-based debate with the user on the selected topic.

Your rules:
1. Always use a respectful, objective and impartial tone. Never be aggressive or personal.
2. Carefully analyze the user's arguments and respond to them directly. Do not change the subject.
3. Support your own arguments with general knowledge, statistics or logical deductions, but avoid statements such as 'I am an AI'. Play your role.
4. Notice the logical fallacies the user makes (for example ad hominem, straw man), but do not point them out during the debate. Keep this information for the final report.
5. Keep your answers clear, understandable and no longer than 2-3 paragraphs.

The current topic is: "%[1]s". The user is defending the "%[2]s" side. You will defend the opposing side. Considering the chat history, provide only your next response.`,
	historyHeader: "---CHAT HISTORY---",
	nextTurnCue:   "AI Debater's next response:",
	report: `Below is the full transcript of a debate between a user and you. Analyze this text like a debate coach and create a performance report based on the following criteria. The output must be valid JSON.

Debate Transcript:
"""
%s
"""

Required JSON Report Schema:
{
  "enGucluArguman": "Summarize the strongest and most persuasive argument the user presented.",
  "gelistirilmesiGerekenNokta": {
    "tespitEdilenHata": "Write the most prominent logical fallacy or weak argument the user made. For example: 'The user committed a Straw Man fallacy by oversimplifying the counter-argument.'",
    "onerilenGelistirme": "Give a short suggestion on how to fix this."
  },
  "iknaEdicilikPuani": "Give the user's overall performance a score from 1 to 10 (number only).",
  "genelYorum": "Add 1-2 sentences of general feedback as a coach."
}`,
	argumentMap: `Analyze the following debate transcript and create a Mermaid.js diagram representing the logical flow of the text.

Rules:
1. The output must contain only valid Mermaid.js ` + "`graph TD`" + ` (Top-Down) syntax.
2. Summarize the user's main arguments and place them in rectangular boxes. E.g., A["Main Argument 1"].
3. Place the sub-ideas or examples the user provides to support these main arguments in round-edged boxes. E.g., B("Supporting Idea 1.1").
4. Place the AI Debater's counter-arguments to the user's arguments or ideas in rhombus shapes. E.g., C{"Counter-Argument 1"}.
5. Use arrows (` + "`-->`" + `) to show the logical connection between arguments, supporting ideas and counter-arguments.
6. Keep the texts short; write a summary of the idea, not the full sentence.
7. Your response must start directly with 'graph TD'. There must be no other text, explanation or code block before or after it.

Debate Transcript:
"""
%s
"""

Mermaid.js Output:`,
}

func promptsFor(lang locale.Lang) promptSet {
	if lang == locale.English {
		return englishPrompts
	}
	return turkishPrompts
}

// FormatTranscript renders messages as one "Label: text" line per turn.
func FormatTranscript(lang locale.Lang, messages []models.Message) string {
	p := promptsFor(lang)
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		label := p.aiLabel
		if msg.Author == models.AuthorUser {
			label = p.userLabel
		}
		lines = append(lines, fmt.Sprintf("%s: %s", label, msg.Text))
	}
	return strings.Join(lines, "\n")
}

// TurnPrompt builds the prompt for the AI's next debate turn. The AI argues the
// side opposite to stance.
func TurnPrompt(lang locale.Lang, topic string, stance models.Stance, messages []models.Message) string {
	p := promptsFor(lang)
	side := p.stanceCon
	if stance == models.StancePro {
		side = p.stancePro
	}
	system := fmt.Sprintf(p.turnSystem, topic, side)
	return fmt.Sprintf("%s\n\n%s\n%s\n\n%s", system, p.historyHeader, FormatTranscript(lang, messages), p.nextTurnCue)
}

// ReportPrompt asks the model, acting as a coach, for the JSON performance report.
func ReportPrompt(lang locale.Lang, messages []models.Message) string {
	return fmt.Sprintf(promptsFor(lang).report, FormatTranscript(lang, messages))
}

// ArgumentMapPrompt asks for a Mermaid graph of the debate's argument structure.
func ArgumentMapPrompt(lang locale.Lang, messages []models.Message) string {
	return fmt.Sprintf(promptsFor(lang).argumentMap, FormatTranscript(lang, messages))
}
