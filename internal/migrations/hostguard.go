package migrations

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strings"

	"github.com/ethpandaops/query-validator/internal/database"
	"github.com/sirupsen/logrus"
)

// ErrNonWhitelistedHost is returned when fixtures would be written to a host
// outside the safe list.
var ErrNonWhitelistedHost = errors.New("refusing to migrate non-whitelisted database host")

// HostValidator checks that a connection string only targets hosts fixture
// migrations may modify.
type HostValidator interface {
	// Validate returns ErrNonWhitelistedHost when any host in dsn is not
	// whitelisted. SQLite databases are local and always allowed.
	Validate(dsn string) error
}

type hostValidator struct {
	safeHostnames []string
	log           logrus.FieldLogger
}

// NewHostValidator creates a validator for the provided whitelist.
func NewHostValidator(safeHostnames []string, log logrus.FieldLogger) HostValidator {
	return &hostValidator{
		safeHostnames: safeHostnames,
		log:           log.WithField("component", "host_validator"),
	}
}

func (v *hostValidator) Validate(dsn string) error {
	driver, source, err := database.ParseDSN(dsn)
	if err != nil {
		return err
	}

	if driver == database.DriverSQLite {
		return nil
	}

	hosts, err := dsnHosts(source)
	if err != nil {
		return err
	}

	for _, host := range hosts {
		if !slices.Contains(v.safeHostnames, host) {
			return fmt.Errorf(
				"%w '%s': add it to SAFE_HOSTNAMES to allow loading fixtures (current whitelist: %v)",
				ErrNonWhitelistedHost, host, v.safeHostnames,
			)
		}
	}

	v.log.WithFields(logrus.Fields{
		"hosts":     hosts,
		"whitelist": v.safeHostnames,
	}).Debug("database hosts validated")

	return nil
}

// dsnHosts returns the host names of a URL-style connection string. ClickHouse
// accepts a comma-separated host list.
func dsnHosts(source string) ([]string, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parsing database uri: %w", err)
	}

	var hosts []string

	for _, hostport := range strings.Split(u.Host, ",") {
		if hostport == "" {
			continue
		}

		host, _, err := net.SplitHostPort(hostport)
		if err != nil {
			host = strings.Trim(hostport, "[]")
		}

		hosts = append(hosts, host)
	}

	if len(hosts) == 0 {
		hosts = append(hosts, "localhost")
	}

	return hosts, nil
}

// Compile-time interface compliance check
var _ HostValidator = (*hostValidator)(nil)
