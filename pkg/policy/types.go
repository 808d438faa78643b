package policy

// ConfigType identifies which per-tenant configuration blob is being loaded.
type ConfigType string

const (
	ConfigClassificationRules ConfigType = "classification_rules"
	ConfigModerationRules     ConfigType = "moderation_rules"
	ConfigResponseTemplates   ConfigType = "response_templates"
	ConfigNotifications       ConfigType = "notifications"
)

// Default thresholds applied when a tenant has not configured a value.
const (
	DefaultToxicityThreshold       = 7
	DefaultAutoHideThreshold       = 7
	DefaultMinConfidenceThreshold  = 70
	DefaultSpamConfidenceThreshold = 80
	DefaultRepeatOffenderThreshold = 3
	DefaultMaxReplyLength          = 500
)

// IntentRule binds an intent label to the keywords that trigger it. Rules are
// stored as an ordered list because the first matching intent wins and tenants
// control that order.
type IntentRule struct {
	Intent   string   `json:"intent"`
	Keywords []string `json:"keywords"`
}

// DayHours holds opening hours for a single weekday as "HH:MM" strings.
type DayHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// BusinessHours describes when a tenant's team is available to respond.
// Weekday keys are lowercase English day names ("monday" .. "sunday").
type BusinessHours struct {
	Timezone string              `json:"timezone"`
	Hours    map[string]DayHours `json:"hours"`
}

// ClassificationRules is the tenant policy consumed by the refinement engine
// and the action decision engine.
type ClassificationRules struct {
	BusinessContext        string         `json:"business_context"`
	ToxicityThreshold      int            `json:"toxicity_threshold"`
	AutoHideThreshold      int            `json:"auto_hide_threshold"`
	MinConfidenceThreshold int            `json:"min_confidence_threshold"`
	AutoReplyEnabled       *bool          `json:"auto_reply_enabled"`
	UrgencyKeywords        []string       `json:"urgency_keywords"`
	PositiveKeywords       []string       `json:"positive_keywords"`
	NegativeKeywords       []string       `json:"negative_keywords"`
	IntentKeywords         []IntentRule   `json:"intent_keywords"`
	BusinessHours          *BusinessHours `json:"business_hours"`
}

// AutoReply reports whether auto-replies are enabled, defaulting to true when
// the tenant never configured the flag.
func (r ClassificationRules) AutoReply() bool {
	if r.AutoReplyEnabled == nil {
		return true
	}
	return *r.AutoReplyEnabled
}

// Normalize fills unset thresholds with platform defaults.
func (r *ClassificationRules) Normalize() {
	if r.ToxicityThreshold <= 0 {
		r.ToxicityThreshold = DefaultToxicityThreshold
	}
	if r.AutoHideThreshold <= 0 {
		r.AutoHideThreshold = DefaultAutoHideThreshold
	}
	if r.MinConfidenceThreshold <= 0 {
		r.MinConfidenceThreshold = DefaultMinConfidenceThreshold
	}
}

// ModerationRules is the stricter policy re-checked by the hide executor
// before an irreversible platform call.
type ModerationRules struct {
	AutoHideThreshold       int      `json:"auto_hide_threshold"`
	BannedKeywords          []string `json:"banned_keywords"`
	SpamConfidenceThreshold int      `json:"spam_confidence_threshold"`
	RepeatOffenderThreshold int      `json:"repeat_offender_threshold"`
	AutoHideViolations      []string `json:"auto_hide_violations"`
}

// Normalize fills unset thresholds with platform defaults.
func (r *ModerationRules) Normalize() {
	if r.AutoHideThreshold <= 0 {
		r.AutoHideThreshold = DefaultAutoHideThreshold
	}
	if r.SpamConfidenceThreshold <= 0 {
		r.SpamConfidenceThreshold = DefaultSpamConfidenceThreshold
	}
	if r.RepeatOffenderThreshold <= 0 {
		r.RepeatOffenderThreshold = DefaultRepeatOffenderThreshold
	}
}

// ResponseTemplates holds the tenant's reply templates and formatting limits.
// Templates are keyed by intent, sentiment or urgency; "default" is the
// fallback key.
type ResponseTemplates struct {
	Templates      map[string]string `json:"templates"`
	MaxReplyLength int               `json:"max_reply_length"`
	Signature      string            `json:"signature"`
	UseEmojis      bool              `json:"use_emojis"`
}

// Normalize fills unset limits with platform defaults.
func (r *ResponseTemplates) Normalize() {
	if r.MaxReplyLength <= 0 {
		r.MaxReplyLength = DefaultMaxReplyLength
	}
}

// NotificationSettings gates which escalation channels a tenant receives.
type NotificationSettings struct {
	SlackEnabled             *bool  `json:"slack_enabled"`
	EmailEnabled             bool   `json:"email_enabled"`
	SMSEnabled               bool   `json:"sms_enabled"`
	HideNotificationsEnabled *bool  `json:"hide_notifications_enabled"`
	SlackChannel             string `json:"slack_channel"`
	EmailAddress             string `json:"email_address"`
	SMSNumber                string `json:"sms_number"`
}

// Slack reports whether Slack notifications are enabled (default true).
func (n NotificationSettings) Slack() bool {
	if n.SlackEnabled == nil {
		return true
	}
	return *n.SlackEnabled
}

// HideNotifications reports whether hide notices are enabled (default true).
func (n NotificationSettings) HideNotifications() bool {
	if n.HideNotificationsEnabled == nil {
		return true
	}
	return *n.HideNotificationsEnabled
}
