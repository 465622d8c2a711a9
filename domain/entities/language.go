package entities

// Language identifies one language of the bridge.
type Language struct {
	// Code is the BCP-47 tag used in translation requests.
	Code string `json:"code"`
	// Name is the human readable display name.
	Name string `json:"name"`
	// RecognitionCode is the code handed to the speech recognizer.
	// For script-ambiguous languages this pins one canonical written
	// form, e.g. Mandarin is always recognized as Simplified.
	RecognitionCode string `json:"recognition_code"`
	// ScriptAmbiguous marks languages with more than one coexisting
	// written character set. Translation output for these languages is
	// normalized to the canonical script named by CanonicalScript.
	ScriptAmbiguous bool   `json:"script_ambiguous,omitempty"`
	CanonicalScript string `json:"canonical_script,omitempty"`
}

// LanguagePair is the active source/target selection of the bridge.
// The host speaks Source, the guest speaks Target.
type LanguagePair struct {
	Source Language `json:"source"`
	Target Language `json:"target"`
}

// Swapped returns the pair with source and target exchanged.
func (p LanguagePair) Swapped() LanguagePair {
	return LanguagePair{Source: p.Target, Target: p.Source}
}

// Supported languages. Kept small on purpose, the full catalog lives in
// the UI layer.
var (
	English = Language{Code: "en", Name: "English", RecognitionCode: "en-US"}
	Chinese = Language{
		Code:            "zh",
		Name:            "Chinese",
		RecognitionCode: "cmn-Hans-CN",
		ScriptAmbiguous: true,
		CanonicalScript: "Simplified Chinese",
	}
	Spanish  = Language{Code: "es", Name: "Spanish", RecognitionCode: "es-ES"}
	French   = Language{Code: "fr", Name: "French", RecognitionCode: "fr-FR"}
	German   = Language{Code: "de", Name: "German", RecognitionCode: "de-DE"}
	Japanese = Language{Code: "ja", Name: "Japanese", RecognitionCode: "ja-JP"}
	Korean   = Language{Code: "ko", Name: "Korean", RecognitionCode: "ko-KR"}
)

var languages = []Language{English, Chinese, Spanish, French, German, Japanese, Korean}

// LanguageByCode looks a language up by its BCP-47 code.
func LanguageByCode(code string) (Language, bool) {
	for _, l := range languages {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// Languages returns the supported language catalog.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// DefaultLanguagePair is English to Simplified Chinese.
func DefaultLanguagePair() LanguagePair {
	return LanguagePair{Source: English, Target: Chinese}
}
