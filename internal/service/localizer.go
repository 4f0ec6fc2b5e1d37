package service

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localeFS embed.FS

// Localizer renders report strings in the configured output language.
// Portuguese is the product default; messages missing from the requested
// language fall through to it, and a message missing everywhere renders
// as its own ID so a report never comes out blank.
type Localizer struct {
	localizer *i18n.Localizer
}

func NewLocalizer(outputLanguage string) (*Localizer, error) {
	tag, err := language.Parse(outputLanguage)
	if err != nil {
		tag = language.Portuguese
	}

	bundle := i18n.NewBundle(language.Portuguese)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := fs.Glob(localeFS, "locales/*.toml")
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		data, err := localeFS.ReadFile(entry)
		if err != nil {
			return nil, err
		}
		if _, err := bundle.ParseMessageFileBytes(data, entry); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", entry, err)
		}
	}

	return &Localizer{
		localizer: i18n.NewLocalizer(bundle, tag.String(), language.Portuguese.String()),
	}, nil
}

func (s *Localizer) Localize(messageID string, data map[string]any) string {
	msg, err := s.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID
	}
	return msg
}
