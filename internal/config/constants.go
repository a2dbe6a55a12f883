package config

import "time"

const (
	AppName    = "course-certify"
	AppVersion = "0.3.0"
)

// Defaults
const (
	DefaultDatabaseDriver = "postgres"
	DefaultMaxOpenConns   = 100
	DefaultMaxIdleConns   = 10
	DefaultServerPort     = ":8080"
	DefaultRequestTimeout = 30 * time.Second
	DefaultLogLevel       = "info"

	DefaultMaxWriteAttempts = 8
	DefaultBackoffInitial   = 10 * time.Millisecond
	DefaultBackoffMax       = 250 * time.Millisecond
	// A single request is expected to finish well under this.
	DefaultClaimGracePeriod = 30 * time.Second

	MinVerificationCodeLength     = 8
	DefaultVerificationCodeLength = 10
	DefaultVerificationCodeTries  = 5

	DefaultReconcileEnabled     = true
	DefaultReconcileSchedule    = "@every 1m"
	DefaultReconcileBatchSize   = 100
	DefaultReconcileConcurrency = 4

	DefaultCollaboratorTimeout = 5 * time.Second
	DefaultEventsChannel       = "certificates.issued"
)
