package threat

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/frknaykc/dragonseye/pkg/types/common"
)

// Raw feed payloads name the same concept differently across sources and
// scraper versions. The FromRaw adapters perform that tagged-field mapping
// exactly once, here, so the rest of the codebase only ever handles the
// typed records in types.go.

// timeLayouts are tried in order when parsing feed timestamps.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.000000",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) common.Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.Timestamp{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return common.Timestamp(t.UTC())
		}
	}
	return common.Timestamp{}
}

// firstString returns the first non-empty string found under the candidate
// keys, in order.
func firstString(raw map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func stringSlice(raw map[string]interface{}, keys ...string) []string {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		switch vv := v.(type) {
		case []interface{}:
			out := make([]string, 0, len(vv))
			for _, item := range vv {
				if s, ok := item.(string); ok && s != "" {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		case string:
			if vv != "" {
				return []string{vv}
			}
		}
	}
	return nil
}

func floatValue(raw map[string]interface{}, keys ...string) float64 {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		switch vv := v.(type) {
		case float64:
			return vv
		case int:
			return float64(vv)
		case json.Number:
			if f, err := vv.Float64(); err == nil {
				return f
			}
		}
	}
	return 0
}

// FromRawVictim maps a loose victim payload to a Victim record.
func FromRawVictim(raw map[string]interface{}) Victim {
	return Victim{
		PostTitle:    firstString(raw, "post_title", "title", "victim"),
		GroupName:    firstString(raw, "group_name", "group"),
		Country:      firstString(raw, "country", "country_code"),
		Activity:     firstString(raw, "activity", "sector", "industry"),
		Website:      firstString(raw, "website", "domain"),
		Description:  firstString(raw, "description"),
		PostURL:      firstString(raw, "post_url", "url"),
		Screenshot:   firstString(raw, "screenshot"),
		PublishedAt:  parseTimestamp(firstString(raw, "published", "published_at", "date")),
		DiscoveredAt: parseTimestamp(firstString(raw, "discovered", "discovered_at", "added")),
	}
}

// FromRawGroup maps a loose group payload to a GroupProfile record.
func FromRawGroup(raw map[string]interface{}) GroupProfile {
	g := GroupProfile{
		Name:        firstString(raw, "name", "group_name", "group"),
		Description: firstString(raw, "description"),
		Meta:        firstString(raw, "meta"),
		URL:         firstString(raw, "url"),
		Profiles:    stringSlice(raw, "profiles", "profile"),
	}
	if locs, ok := raw["locations"].([]interface{}); ok {
		for _, item := range locs {
			lm, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			loc := GroupLocation{
				FQDN:       firstString(lm, "fqdn", "slug_url", "url"),
				Title:      firstString(lm, "title"),
				Slug:       firstString(lm, "slug"),
				Updated:    parseTimestamp(firstString(lm, "updated")),
				LastScrape: parseTimestamp(firstString(lm, "lastscrape", "last_scrape")),
			}
			if b, ok := lm["available"].(bool); ok {
				loc.Available = b
			}
			if b, ok := lm["enabled"].(bool); ok {
				loc.Enabled = b
			}
			if f, ok := lm["version"].(float64); ok {
				loc.Version = int(f)
			}
			g.Locations = append(g.Locations, loc)
		}
	}
	return g
}

// FromRawNote maps a loose ransom-note payload to a RansomNote record.
func FromRawNote(raw map[string]interface{}) RansomNote {
	return RansomNote{
		GroupName:  firstString(raw, "group_name", "group"),
		Filename:   firstString(raw, "filename", "note_name", "name"),
		Extensions: stringSlice(raw, "extensions", "extension"),
		Content:    firstString(raw, "content", "text"),
		AddedAt:    parseTimestamp(firstString(raw, "added", "added_at", "date")),
	}
}

// FromRawDecryptor maps a loose decryptor payload to a Decryptor record.
func FromRawDecryptor(raw map[string]interface{}) Decryptor {
	return Decryptor{
		GroupName:  firstString(raw, "group_name", "group"),
		Name:       firstString(raw, "name", "tool", "decryptor"),
		Vendor:     firstString(raw, "vendor", "provider"),
		URL:        firstString(raw, "url", "download_url"),
		ReleasedAt: parseTimestamp(firstString(raw, "released", "date", "added")),
	}
}

// FromRawChat maps a loose negotiation-chat payload to a NegotiationChat.
// Message roles appear under several historical keys across transcript
// versions; the first populated candidate wins.
func FromRawChat(raw map[string]interface{}) NegotiationChat {
	chat := NegotiationChat{
		ChatID:           firstString(raw, "chat_id", "chatId", "id"),
		GroupName:        firstString(raw, "group_name", "group"),
		InitialRansom:    floatValue(raw, "initial_ransom", "initialRansom", "demand"),
		NegotiatedRansom: floatValue(raw, "negotiated_ransom", "negotiatedRansom", "settled"),
	}
	if v, ok := raw["paid"]; ok {
		data, err := json.Marshal(v)
		if err == nil {
			_ = chat.Paid.UnmarshalJSON(data)
		}
	}
	if msgs, ok := raw["messages"].([]interface{}); ok {
		for _, item := range msgs {
			mm, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			chat.Messages = append(chat.Messages, ChatMessage{
				Role:      firstString(mm, "party", "role", "sender", "from", "type"),
				Content:   firstString(mm, "content", "message", "text", "body"),
				Timestamp: parseTimestamp(firstString(mm, "timestamp", "time", "date")),
			})
		}
	}
	return chat
}
