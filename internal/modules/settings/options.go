package settings

import (
	"sort"

	"paypalexpress/internal/domain"
)

type Option struct {
	Text     string `json:"text"`
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

var locales = map[string]string{
	"AU":    "Australia",
	"AI":    "Austria",
	"BE":    "Belgium",
	"BR":    "Brazil",
	"CA":    "Canada",
	"CH":    "Switzerland",
	"CN":    "China",
	"DE":    "Germany",
	"ES":    "Spain",
	"GB":    "United Kingdom",
	"FR":    "France",
	"IT":    "Italy",
	"NL":    "Netherlands",
	"PL":    "Poland",
	"PT":    "Portugal",
	"RU":    "Russia",
	"da_DK": "Danish (for Denmark only)",
	"he_IL": "Hebrew (all)",
	"id_ID": "Indonesian (for Indonesia only)",
	"jp_JP": "Japanese (for Japan only)",
	"no_NO": "Norweigan (for Norway only)",
	"pt_BR": "Portuguese (for Portugal and Brazil only)",
	"ru_RU": "Russian (for Lithuania, Latvia, and Ukraine only)",
	"sv_SE": "Swedish (for Sweden only)",
	"th_TH": "Thai (for Thailand only)",
	"tr_TR": "Turkish (for Turkey only)",
	"zh_CN": "Simplified Chinese (for China only)",
	"zh_HK": "Traditional Chinese (for Hong Kong only)",
	"zh_TW": "Traditional Chinese (for Taiwan only)",
}

func IsLocaleCode(code string) bool {
	if code == "US" {
		return true
	}
	_, ok := locales[code]
	return ok
}

// LocaleOptions lists locales by label with United States first.
func LocaleOptions(selected string) []Option {
	opts := make([]Option, 0, len(locales)+1)
	for code, label := range locales {
		opts = append(opts, Option{Text: label, Value: code, Selected: code == selected})
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].Text < opts[j].Text })

	us := Option{Text: "United States", Value: "US", Selected: selected == "" || selected == "US"}
	return append([]Option{us}, opts...)
}

func PaymentActionOptions(selected domain.PaymentAction) []Option {
	actions := []domain.PaymentAction{domain.PaymentActionAuthorization, domain.PaymentActionSale}
	opts := make([]Option, 0, len(actions))
	for _, a := range actions {
		opts = append(opts, Option{Text: string(a), Value: string(a), Selected: a == selected})
	}
	return opts
}
