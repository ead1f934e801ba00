package youtube

// Innertube wire types and constants. Higher-level logic lives in client.go.

const (
	watchPath          = "/watch?v="
	innertubePlayerURL = "/youtubei/v1/player?key="
	androidClientName  = "ANDROID"
	androidVersion     = "20.10.38"

	consentFormMarker = `action="https://consent.youtube.com/s"`
	recaptchaMarker   = `class="g-recaptcha"`

	playabilityOK            = "OK"
	playabilityLoginRequired = "LOGIN_REQUIRED"
	playabilityError         = "ERROR"

	reasonBotDetected      = "Sign in to confirm you’re not a bot"
	reasonAgeRestricted    = "This video may be inappropriate for some users."
	reasonVideoUnavailable = "This video is unavailable"
)

type innertubeReq struct {
	Context innertubeCtx `json:"context"`
	VideoID string       `json:"videoId"`
}

type innertubeCtx struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
}

type playerResp struct {
	PlayabilityStatus *playabilityStatus `json:"playabilityStatus"`
	Captions          *struct {
		Renderer *captionsRenderer `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type playabilityStatus struct {
	Status      string `json:"status"`
	Reason      string `json:"reason"`
	ErrorScreen struct {
		PlayerErrorMessageRenderer struct {
			Subreason textField `json:"subreason"`
		} `json:"playerErrorMessageRenderer"`
	} `json:"errorScreen"`
}

type captionsRenderer struct {
	// nil when the key is absent, empty when YouTube sends [].
	CaptionTracks        []captionTrack        `json:"captionTracks"`
	TranslationLanguages []translationLanguage `json:"translationLanguages"`
}

type captionTrack struct {
	BaseURL        string    `json:"baseUrl"`
	Name           textField `json:"name"`
	LanguageCode   string    `json:"languageCode"`
	Kind           string    `json:"kind"` // "asr" = auto-generated
	IsTranslatable bool      `json:"isTranslatable"`
}

type translationLanguage struct {
	LanguageCode string    `json:"languageCode"`
	LanguageName textField `json:"languageName"`
}

// textField is YouTube's text container: either simpleText or a list of runs.
type textField struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (t textField) String() string {
	if t.SimpleText != "" {
		return t.SimpleText
	}
	if len(t.Runs) > 0 {
		return t.Runs[0].Text
	}
	return ""
}

func (t textField) allRuns() []string {
	out := make([]string, 0, len(t.Runs))
	for _, r := range t.Runs {
		out = append(out, r.Text)
	}
	return out
}
