// Package detail turns a subscription snapshot into the ordered rows,
// links and actions of the subscription details panel.
package detail

// Tone tells a renderer how to colour a value.
type Tone int

const (
	ToneNeutral Tone = iota
	TonePositive
	ToneNegative
)

func (t Tone) String() string {
	switch t {
	case TonePositive:
		return "positive"
	case ToneNegative:
		return "negative"
	default:
		return "neutral"
	}
}

// MarshalText lets JSON output carry the tone name instead of a number.
func (t Tone) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Row is one labelled value of the panel. ID is a stable hook for tests and
// automation.
type Row struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Value   string `json:"value"`
	Tone    Tone   `json:"tone"`
	Helper  string `json:"helper,omitempty"`
	Visible bool   `json:"-"`
}

// Tab is a routed tab shown above the panel.
type Tab struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Route   string `json:"route"`
	Back    bool   `json:"back,omitempty"`
	Current bool   `json:"current,omitempty"`
}

// Link is an outbound hyperlink embedded in static text.
type Link struct {
	Text   string `json:"text"`
	URL    string `json:"url"`
	NewTab bool   `json:"new_tab"`
}

// CallToAction is a sentence with an embedded link: Prefix + Link.Text.
type CallToAction struct {
	Prefix string `json:"prefix"`
	Link   Link   `json:"link"`
}

// Text returns the sentence without markup.
func (c CallToAction) Text() string {
	return c.Prefix + c.Link.Text
}

// Action is a navigation control. It has no side effect beyond navigating
// to Route.
type Action struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	AriaLabel string `json:"aria_label,omitempty"`
	Route     string `json:"route"`
}

// Panel is everything needed to draw the subscription details screen.
type Panel struct {
	Tabs         []Tab        `json:"tabs"`
	Rows         []Row        `json:"rows"`
	CallToAction CallToAction `json:"call_to_action"`
	Actions      []Action     `json:"actions"`
}

// Row returns the row with the given ID.
func (p Panel) Row(id string) (Row, bool) {
	for _, r := range p.Rows {
		if r.ID == id {
			return r, true
		}
	}
	return Row{}, false
}

// Action returns the action with the given ID.
func (p Panel) Action(id string) (Action, bool) {
	for _, a := range p.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// BackTab returns the tab leading out of the panel, if any.
func (p Panel) BackTab() (Tab, bool) {
	for _, t := range p.Tabs {
		if t.Back {
			return t, true
		}
	}
	return Tab{}, false
}
