package domain

import "time"

// WorkerDomain is a subdomain claimed by a worker for traffic attribution.
// Subdomains are globally unique across all workers, active or not.
type WorkerDomain struct {
	ID        int64
	WorkerID  int64
	Subdomain string
	IsActive  bool
	CreatedAt time.Time
}

// FQDN renders the fully-qualified hostname for the given base zone.
func (d *WorkerDomain) FQDN(zone string) string {
	return d.Subdomain + "." + zone
}
