package detail

import (
	"fmt"
	"strconv"
	"time"

	"github.com/w31r4/subview/internal/dates"
	"github.com/w31r4/subview/internal/subscription"
)

// Routes and links used by the panel.
const (
	SettingsRoute     = "/settings"
	DetailsRoute      = "/settings/subscription/details"
	EditRoute         = "/settings/subscription/edit"
	DefaultContactURL = "https://www.redhat.com/contact"
)

// Row IDs.
const (
	IDStatus                  = "subscription-status"
	IDHostsAutomated          = "subscription-hosts-automated"
	IDHostsImported           = "subscription-hosts-imported"
	IDHostsRemaining          = "subscription-hosts-remaining"
	IDHostsDeleted            = "subscription-hosts-deleted"
	IDHostsReactivated        = "subscription-hosts-reactivated"
	IDHostsAvailable          = "subscription-hosts-available"
	IDUnlimitedHostsAvailable = "subscription-unlimited-hosts-available"
	IDType                    = "subscription-type"
	IDName                    = "subscription-name"
	IDTrial                   = "subscription-trial"
	IDExpiresOn               = "subscription-expires-on-date"
	IDExpiresOnUTC            = "subscription-expires-on-utc-date"
	IDDaysRemaining           = "subscription-days-remaining"
	IDVersion                 = "subscription-version"

	IDEdit = "subscription-edit"
)

const (
	compliantHelp    = "The number of hosts you have automated against is below your subscription count."
	noncompliantHelp = "You have automated against more hosts than your subscription allows."
)

// Options tunes how values are rendered.
type Options struct {
	// Location is the "local" timezone for the Expires on row.
	// Nil means time.Local.
	Location *time.Location
	// ContactURL is the target of the upgrade/renew link.
	// Empty means DefaultContactURL.
	ContactURL string
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

// rule decides whether a row is shown and builds it.
type rule struct {
	id      string
	label   string
	visible func(s subscription.Snapshot) bool
	build   func(s subscription.Snapshot, opts Options) Row
}

func always(subscription.Snapshot) bool { return true }

func uniqueManagedHosts(s subscription.Snapshot) bool { return s.UsesUniqueManagedHosts() }

func value(fn func(s subscription.Snapshot, opts Options) string) func(subscription.Snapshot, Options) Row {
	return func(s subscription.Snapshot, opts Options) Row {
		return Row{Value: fn(s, opts)}
	}
}

func itoa(n int) string { return strconv.Itoa(n) }

// rules is evaluated top to bottom; the order is the display order.
var rules = []rule{
	{
		id:      IDStatus,
		label:   "Status",
		visible: uniqueManagedHosts,
		build: func(s subscription.Snapshot, _ Options) Row {
			if s.LicenseInfo.Compliant {
				return Row{Value: "Compliant", Tone: TonePositive, Helper: compliantHelp}
			}
			return Row{Value: "Out of compliance", Tone: ToneNegative, Helper: noncompliantHelp}
		},
	},
	{
		id:    IDHostsAutomated,
		label: "Hosts automated",
		visible: func(s subscription.Snapshot) bool {
			return s.LicenseInfo.AutomatedInstances != nil
		},
		build: value(func(s subscription.Snapshot, opts Options) string {
			count := itoa(*s.LicenseInfo.AutomatedInstances)
			since := s.LicenseInfo.AutomatedSince
			if since == nil || *since == 0 {
				return count
			}
			return fmt.Sprintf("%s since %s", count, dates.FormatEpoch(*since, opts.location()))
		}),
	},
	{
		id:      IDHostsImported,
		label:   "Hosts imported",
		visible: always,
		build: value(func(s subscription.Snapshot, _ Options) string {
			return itoa(s.LicenseInfo.CurrentInstances)
		}),
	},
	{
		id:      IDHostsRemaining,
		label:   "Hosts remaining",
		visible: uniqueManagedHosts,
		build: value(func(s subscription.Snapshot, _ Options) string {
			return itoa(s.LicenseInfo.FreeInstances)
		}),
	},
	{
		id:      IDHostsDeleted,
		label:   "Hosts deleted",
		visible: uniqueManagedHosts,
		build: value(func(s subscription.Snapshot, _ Options) string {
			return itoa(s.LicenseInfo.DeletedInstances)
		}),
	},
	{
		id:      IDHostsReactivated,
		label:   "Active hosts previously deleted",
		visible: uniqueManagedHosts,
		build: value(func(s subscription.Snapshot, _ Options) string {
			return itoa(s.LicenseInfo.ReactivatedInstances)
		}),
	},
	{
		id:    IDHostsAvailable,
		label: "Hosts available",
		visible: func(s subscription.Snapshot) bool {
			return !s.LicenseInfo.Unlimited()
		},
		build: value(func(s subscription.Snapshot, _ Options) string {
			return itoa(s.LicenseInfo.AvailableInstances)
		}),
	},
	{
		id:    IDUnlimitedHostsAvailable,
		label: "Hosts available",
		visible: func(s subscription.Snapshot) bool {
			return s.LicenseInfo.Unlimited()
		},
		build: value(func(subscription.Snapshot, Options) string {
			return "Unlimited"
		}),
	},
	{
		id:      IDType,
		label:   "Subscription type",
		visible: always,
		build: value(func(s subscription.Snapshot, _ Options) string {
			return s.LicenseInfo.LicenseType
		}),
	},
	{
		id:      IDName,
		label:   "Subscription",
		visible: always,
		build: value(func(s subscription.Snapshot, _ Options) string {
			return s.LicenseInfo.SubscriptionName
		}),
	},
	{
		id:      IDTrial,
		label:   "Trial",
		visible: always,
		build: value(func(s subscription.Snapshot, _ Options) string {
			if s.LicenseInfo.Trial {
				return "True"
			}
			return "False"
		}),
	},
	{
		id:    IDExpiresOn,
		label: "Expires on",
		visible: func(s subscription.Snapshot) bool {
			return s.LicenseInfo.LicenseDate != nil
		},
		build: value(func(s subscription.Snapshot, opts Options) string {
			return dates.FormatEpoch(*s.LicenseInfo.LicenseDate, opts.location())
		}),
	},
	{
		id:    IDExpiresOnUTC,
		label: "Expires on UTC",
		visible: func(s subscription.Snapshot) bool {
			return s.LicenseInfo.LicenseDate != nil
		},
		build: value(func(s subscription.Snapshot, _ Options) string {
			return dates.FormatEpoch(*s.LicenseInfo.LicenseDate, time.UTC)
		}),
	},
	{
		id:    IDDaysRemaining,
		label: "Days remaining",
		visible: func(s subscription.Snapshot) bool {
			return s.LicenseInfo.TimeRemaining != nil
		},
		build: value(func(s subscription.Snapshot, _ Options) string {
			return strconv.FormatInt(dates.SecondsToDays(*s.LicenseInfo.TimeRemaining), 10)
		}),
	},
	{
		id:      IDVersion,
		label:   "Automation controller version",
		visible: always,
		build: value(func(s subscription.Snapshot, _ Options) string {
			return s.Version
		}),
	},
}

// Evaluate runs every rule against snap and returns one row per rule in
// display order, hidden rows included. Builders of hidden rows are not
// called, so a hidden row only carries its ID and label.
func Evaluate(snap subscription.Snapshot, opts Options) []Row {
	out := make([]Row, 0, len(rules))
	for _, r := range rules {
		row := Row{ID: r.id, Label: r.label}
		if r.visible(snap) {
			built := r.build(snap, opts)
			row.Value = built.Value
			row.Tone = built.Tone
			row.Helper = built.Helper
			row.Visible = true
		}
		out = append(out, row)
	}
	return out
}

// Compose builds the panel for snap. It never mutates snap and never fails:
// rows whose source fields are missing are left out.
func Compose(snap subscription.Snapshot, opts Options) Panel {
	contact := opts.ContactURL
	if contact == "" {
		contact = DefaultContactURL
	}

	p := Panel{
		Tabs: []Tab{
			{ID: 99, Name: "Back to Settings", Route: SettingsRoute, Back: true},
			{ID: 0, Name: "Subscription Details", Route: DetailsRoute, Current: true},
		},
		CallToAction: CallToAction{
			Prefix: "If you are ready to upgrade or renew, please ",
			Link:   Link{Text: "contact us.", URL: contact, NewTab: true},
		},
		Actions: []Action{},
	}

	for _, row := range Evaluate(snap, opts) {
		if row.Visible {
			p.Rows = append(p.Rows, row)
		}
	}

	if snap.User.IsSuperuser {
		p.Actions = append(p.Actions, Action{
			ID:        IDEdit,
			Label:     "Edit",
			AriaLabel: "edit",
			Route:     EditRoute,
		})
	}
	return p
}
