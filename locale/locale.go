// Package locale holds the user-facing strings of the arena in Turkish and English
// and picks a language for a new session.
package locale

import (
	"strings"

	"golang.org/x/text/language"
)

type Lang string

const (
	Turkish Lang = "tr"
	English Lang = "en"
)

// Parse returns the supported language named by v, or fallback.
func Parse(v string, fallback Lang) Lang {
	switch Lang(strings.ToLower(strings.TrimSpace(v))) {
	case Turkish:
		return Turkish
	case English:
		return English
	default:
		return fallback
	}
}

var matcher = language.NewMatcher([]language.Tag{language.Turkish, language.English})

// Negotiate picks a language from an Accept-Language header value. An empty or
// unparsable header yields fallback.
func Negotiate(acceptLanguage string, fallback Lang) Lang {
	if strings.TrimSpace(acceptLanguage) == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return fallback
	}
	if index == 1 {
		return English
	}
	return Turkish
}

// Topic is a predefined debate topic offered on the topic screen.
type Topic struct {
	Value string
	Label string
}

// Strings is the full set of UI text for one language.
type Strings struct {
	AppTitle         string
	AppSubtitle      string
	ChooseTopic      string
	TopicPlaceholder string
	CustomTopicLabel string
	CustomTopicHint  string
	ChooseStance     string
	StancePro        string
	StanceCon        string
	StartDebate      string
	TopicHeading     string
	ArgumentHint     string
	Send             string
	EndDebate        string
	ReportTitle      string
	ReportError      string
	ReportRawIntro   string
	ReportPending    string
	ScoreLabel       string
	StrongestArg     string
	WeakPoint        string
	GeneralComment   string
	ArgumentMap      string
	BuildMap         string
	NewDebate        string
	You              string
	Opponent         string
	Thinking         string

	ValidationMissing string
	ReportParseFailed string
	MalformedResponse string
	APIStatusFormat   string
	GenericError      string
	Busy              string

	Topics []Topic
}

var tr = Strings{
	AppTitle:         "Münazara Arenası",
	AppSubtitle:      "Yapay zeka ile argümanlarını sına",
	ChooseTopic:      "1. Bir Münazara Konusu Seçin",
	TopicPlaceholder: "Konu seç...",
	CustomTopicLabel: "Kendi konumu yazmak istiyorum...",
	CustomTopicHint:  "Münazara konunuzu buraya yazın",
	ChooseStance:     "2. Tarafınızı Belirleyin",
	StancePro:        "Savunuyorum",
	StanceCon:        "Karşı Çıkıyorum",
	StartDebate:      "Münazarayı Başlat",
	TopicHeading:     "Konu:",
	ArgumentHint:     "Argümanınızı yazın...",
	Send:             "Gönder",
	EndDebate:        "Münazarayı Bitir ve Rapor Al",
	ReportTitle:      "Performans Raporu",
	ReportError:      "Rapor Hatası",
	ReportRawIntro:   "Raporun formatı anlaşılamadı. Ham veri aşağıdadır:",
	ReportPending:    "Rapor yükleniyor veya bir hata oluştu...",
	ScoreLabel:       "İkna Edicilik Puanı",
	StrongestArg:     "En Güçlü Argümanınız",
	WeakPoint:        "Geliştirilmesi Gereken Nokta",
	GeneralComment:   "Genel Yorum",
	ArgumentMap:      "Argüman Haritası",
	BuildMap:         "Argüman Haritası Oluştur",
	NewDebate:        "Yeni Münazara Başlat",
	You:              "Kullanıcı",
	Opponent:         "AI Münazır",
	Thinking:         "AI Münazır düşünüyor...",

	ValidationMissing: "Lütfen bir konu ve taraf seçin.",
	ReportParseFailed: "Rapor oluşturulurken bir hata oluştu. Lütfen rapor formatını kontrol edin.",
	MalformedResponse: "API'den beklenen formatta bir yanıt alınamadı.",
	APIStatusFormat:   "API Hatası: %d %s",
	GenericError:      "Bir hata oluştu. Lütfen tekrar deneyin.",
	Busy:              "Önceki isteğin yanıtı bekleniyor.",

	Topics: []Topic{
		{Value: "Yapay zeka insanlık için bir tehdit mi?", Label: "Yapay zeka insanlık için bir tehdit mi?"},
		{Value: "Üniversite eğitimi herkes için ücretsiz mi olmalı?", Label: "Üniversite eğitimi herkes için ücretsiz mi olmalı?"},
		{Value: "Sosyal medya toplumu olumlu yönde mi etkiliyor?", Label: "Sosyal medya toplumu olumlu yönde mi etkiliyor?"},
	},
}

var en = Strings{
	AppTitle:         "Debate Arena",
	AppSubtitle:      "Test your arguments against AI",
	ChooseTopic:      "1. Choose a Debate Topic",
	TopicPlaceholder: "Choose a topic...",
	CustomTopicLabel: "I want to write my own topic...",
	CustomTopicHint:  "Type your debate topic here",
	ChooseStance:     "2. Choose Your Side",
	StancePro:        "I Support",
	StanceCon:        "I Oppose",
	StartDebate:      "Start Debate",
	TopicHeading:     "Topic:",
	ArgumentHint:     "Type your argument...",
	Send:             "Send",
	EndDebate:        "End Debate and Get Report",
	ReportTitle:      "Performance Report",
	ReportError:      "Report Error",
	ReportRawIntro:   "The report format could not be understood. Raw data below:",
	ReportPending:    "The report is loading or an error occurred...",
	ScoreLabel:       "Persuasiveness Score",
	StrongestArg:     "Your Strongest Argument",
	WeakPoint:        "Point to Improve",
	GeneralComment:   "General Comment",
	ArgumentMap:      "Argument Map",
	BuildMap:         "Build Argument Map",
	NewDebate:        "Start New Debate",
	You:              "User",
	Opponent:         "AI Debater",
	Thinking:         "AI Debater is thinking...",

	ValidationMissing: "Please choose a topic and a side.",
	ReportParseFailed: "An error occurred while creating the report. Please check the report format.",
	MalformedResponse: "Could not get a response in the expected format from the API.",
	APIStatusFormat:   "API Error: %d %s",
	GenericError:      "An error occurred. Please try again.",
	Busy:              "Still waiting for the previous response.",

	Topics: []Topic{
		{Value: "Is AI a threat to humanity?", Label: "Is AI a threat to humanity?"},
		{Value: "Should university education be free for everyone?", Label: "Should university education be free for everyone?"},
		{Value: "Does social media affect society positively?", Label: "Does social media affect society positively?"},
	},
}

// For returns the strings of lang, Turkish for anything unknown.
func For(lang Lang) Strings {
	if lang == English {
		return en
	}
	return tr
}
