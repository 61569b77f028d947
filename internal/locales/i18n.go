package locales

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

//go:embed *.json
var localeFS embed.FS

// Message IDs used by the console.
const (
	MsgSaved                    = "Saved"
	MsgResponseRequired         = "ResponseRequired"
	MsgFeedbackAlreadyResolved  = "FeedbackAlreadyResolved"
	MsgFeedbackResolved         = "FeedbackResolved"
	MsgFeedbackDeleted          = "FeedbackDeleted"
	MsgBatteryLevelInvalid      = "BatteryLevelInvalid"
	MsgMaintenanceUpdated       = "MaintenanceUpdated"
	MsgMaintenanceAlreadyFixed  = "MaintenanceAlreadyFixed"
	MsgMaintenanceDeleted       = "MaintenanceDeleted"
	MsgMaintenanceStatusInvalid = "MaintenanceStatusInvalid"
	MsgChatMessageRequired      = "ChatMessageRequired"
	MsgChatSessionFailed        = "ChatSessionFailed"
	MsgErrForbidden             = "ErrForbidden"
	MsgErrNotFound              = "ErrNotFound"
	MsgErrServer                = "ErrServer"
	MsgErrUnknown               = "ErrUnknown"
)

// Catalog resolves message IDs into text for one language.
type Catalog struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	lang      language.Tag
}

// New loads the embedded catalogs and binds a localizer for lang.
func New(lang string) (*Catalog, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		log.WithError(err).WithField("lang", lang).Warn("Unknown language, falling back to Vietnamese")
		tag = language.Vietnamese
	}

	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("read embedded locales: %w", err)
	}
	loaded := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if _, err := bundle.LoadMessageFileFS(localeFS, e.Name()); err != nil {
			return nil, fmt.Errorf("load message file %s: %w", e.Name(), err)
		}
		loaded++
	}
	if loaded == 0 {
		return nil, fmt.Errorf("no message files embedded")
	}

	return &Catalog{
		bundle:    bundle,
		localizer: i18n.NewLocalizer(bundle, tag.String(), language.Vietnamese.String()),
		lang:      tag,
	}, nil
}

// MustNew is New for package initialisation and tests.
func MustNew(lang string) *Catalog {
	c, err := New(lang)
	if err != nil {
		panic(err)
	}
	return c
}

// Language returns the catalog language.
func (c *Catalog) Language() language.Tag {
	return c.lang
}

// T returns the localized text for id, or id itself when it has no translation.
func (c *Catalog) T(id string) string {
	msg, err := c.localizer.Localize(&i18n.LocalizeConfig{MessageID: id})
	if err != nil {
		log.WithError(err).WithField("message_id", id).Warn("Missing translation")
		return id
	}
	return msg
}
