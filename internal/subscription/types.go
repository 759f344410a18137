package subscription

// UsageModelUniqueManagedHosts is the usage model under which compliance and
// host churn counters are meaningful.
const UsageModelUniqueManagedHosts = "unique_managed_hosts"

// UnlimitedInstanceCount is the instance count at or above which a
// subscription is treated as having unlimited hosts.
const UnlimitedInstanceCount = 9999999

// Snapshot is a read-only view of the controller configuration that the
// subscription panel is rendered from.
type Snapshot struct {
	User         User         `json:"me" yaml:"me"`
	LicenseInfo  LicenseInfo  `json:"license_info" yaml:"license_info"`
	Version      string       `json:"version" yaml:"version"`
	SystemConfig SystemConfig `json:"system_config" yaml:"system_config"`
}

// User is the identity of the person looking at the panel.
type User struct {
	Username    string `json:"username,omitempty" yaml:"username,omitempty"`
	IsSuperuser bool   `json:"is_superuser" yaml:"is_superuser"`
}

// SystemConfig holds the system-wide settings the panel cares about.
// An empty SubscriptionUsageModel means the setting is undefined.
type SystemConfig struct {
	SubscriptionUsageModel string `json:"SUBSCRIPTION_USAGE_MODEL,omitempty" yaml:"SUBSCRIPTION_USAGE_MODEL,omitempty"`
}

// LicenseInfo describes host usage limits and expiration of a subscription.
// Pointer fields are optional; nil means the controller did not report them.
type LicenseInfo struct {
	Compliant            bool   `json:"compliant" yaml:"compliant"`
	AutomatedInstances   *int   `json:"automated_instances,omitempty" yaml:"automated_instances,omitempty"`
	AutomatedSince       *int64 `json:"automated_since,omitempty" yaml:"automated_since,omitempty"`
	CurrentInstances     int    `json:"current_instances" yaml:"current_instances"`
	FreeInstances        int    `json:"free_instances" yaml:"free_instances"`
	DeletedInstances     int    `json:"deleted_instances" yaml:"deleted_instances"`
	ReactivatedInstances int    `json:"reactivated_instances" yaml:"reactivated_instances"`
	InstanceCount        int    `json:"instance_count" yaml:"instance_count"`
	AvailableInstances   int    `json:"available_instances" yaml:"available_instances"`
	LicenseType          string `json:"license_type" yaml:"license_type"`
	SubscriptionName     string `json:"subscription_name" yaml:"subscription_name"`
	Trial                bool   `json:"trial" yaml:"trial"`
	LicenseDate          *int64 `json:"license_date,omitempty" yaml:"license_date,omitempty"`
	TimeRemaining        *int64 `json:"time_remaining,omitempty" yaml:"time_remaining,omitempty"`
}

// UsesUniqueManagedHosts reports whether the host churn counters apply.
func (s Snapshot) UsesUniqueManagedHosts() bool {
	return s.SystemConfig.SubscriptionUsageModel == UsageModelUniqueManagedHosts
}

// Unlimited reports whether the subscription has no host limit.
func (l LicenseInfo) Unlimited() bool {
	return l.InstanceCount >= UnlimitedInstanceCount
}

// Int returns a pointer to v. Handy for building optional fields.
func Int(v int) *int { return &v }

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }
