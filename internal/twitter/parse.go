package twitter

import "strings"

// The twitter241 scraper mirrors Twitter's internal GraphQL payloads, so
// the shapes below model only the paths we actually read and tolerate
// everything else being absent.

type userEnvelope struct {
	User *struct {
		Result *userResult `json:"result"`
	} `json:"user"`
	Result *struct {
		Data *struct {
			User *struct {
				Result *userResult `json:"result"`
			} `json:"user"`
		} `json:"data"`
	} `json:"result"`
}

// userResult returns the account payload from whichever of the two
// envelope shapes the scraper used for this response.
func (e *userEnvelope) userResult() *userResult {
	if e.User != nil && e.User.Result != nil {
		return e.User.Result
	}
	if e.Result != nil && e.Result.Data != nil && e.Result.Data.User != nil {
		return e.Result.Data.User.Result
	}
	return nil
}

type userResult struct {
	RestID string `json:"rest_id"`
	Legacy struct {
		Name                 string `json:"name"`
		ScreenName           string `json:"screen_name"`
		ProfileImageURLHTTPS string `json:"profile_image_url_https"`
		StatusesCount        int    `json:"statuses_count"`
	} `json:"legacy"`
	Core struct {
		Name       string `json:"name"`
		ScreenName string `json:"screen_name"`
	} `json:"core"`
	Avatar struct {
		ImageURL string `json:"image_url"`
	} `json:"avatar"`
}

func (r *userResult) profile(fallbackHandle string) *Profile {
	name := r.Legacy.Name
	if name == "" {
		name = r.Core.Name
	}
	if name == "" {
		name = fallbackHandle
	}

	screenName := r.Legacy.ScreenName
	if screenName == "" {
		screenName = r.Core.ScreenName
	}
	if screenName == "" {
		screenName = fallbackHandle
	}

	return &Profile{
		ID:          r.RestID,
		Handle:      screenName,
		DisplayName: name,
		AvatarURL:   avatarURL(r, fallbackHandle),
		TotalTweets: r.Legacy.StatusesCount,
	}
}

// avatarURL picks the best available profile image. Twitter serves tiny
// "_normal" variants by default, so that suffix is stripped to get the
// full-size image. Accounts without any image get a deterministic
// generated identicon.
func avatarURL(r *userResult, handle string) string {
	if r.Avatar.ImageURL != "" {
		return strings.Replace(r.Avatar.ImageURL, "_normal", "", 1)
	}
	if r.Legacy.ProfileImageURLHTTPS != "" {
		return strings.Replace(r.Legacy.ProfileImageURLHTTPS, "_normal", "", 1)
	}
	return "https://api.dicebear.com/7.x/identicon/svg?seed=" + handle
}

type timelineEnvelope struct {
	Result *struct {
		Timeline *struct {
			Instructions []instruction `json:"instructions"`
		} `json:"timeline"`
	} `json:"result"`
}

type instruction struct {
	Type    string  `json:"type"`
	Entries []entry `json:"entries"`
}

type entry struct {
	EntryID string `json:"entryId"`
	Content struct {
		Value       string       `json:"value"`
		ItemContent *itemContent `json:"itemContent"`
		Items       []struct {
			Item *struct {
				ItemContent *itemContent `json:"itemContent"`
			} `json:"item"`
		} `json:"items"`
	} `json:"content"`
}

type itemContent struct {
	TweetResults struct {
		Result *struct {
			Legacy struct {
				FullText string `json:"full_text"`
			} `json:"legacy"`
		} `json:"result"`
	} `json:"tweet_results"`
}

func (ic *itemContent) fullText() string {
	if ic == nil || ic.TweetResults.Result == nil {
		return ""
	}
	return ic.TweetResults.Result.Legacy.FullText
}

func (e *timelineEnvelope) instructions() []instruction {
	if e.Result == nil || e.Result.Timeline == nil {
		return nil
	}
	return e.Result.Timeline.Instructions
}

// tweetTexts flattens a timeline page into tweet texts. Entries come in
// two flavors: plain tweets and modules (threads, pinned groups) whose
// tweets sit one level deeper under items.
func (e *timelineEnvelope) tweetTexts() []string {
	var texts []string
	for _, ins := range e.instructions() {
		if ins.Type != "TimelineAddEntries" {
			continue
		}
		for _, ent := range ins.Entries {
			if strings.HasPrefix(ent.EntryID, "cursor-") {
				continue
			}
			if text := ent.Content.ItemContent.fullText(); text != "" {
				texts = append(texts, text)
			}
			for _, item := range ent.Content.Items {
				if item.Item == nil {
					continue
				}
				if text := item.Item.ItemContent.fullText(); text != "" {
					texts = append(texts, text)
				}
			}
		}
	}
	return texts
}

func (e *timelineEnvelope) bottomCursor() string {
	for _, ins := range e.instructions() {
		if ins.Type != "TimelineAddEntries" {
			continue
		}
		for _, ent := range ins.Entries {
			if strings.HasPrefix(ent.EntryID, "cursor-bottom-") {
				return ent.Content.Value
			}
		}
	}
	return ""
}
