// Package credentials resolves per-supplier secrets loaded once at startup.
//
// The registry is read from a YAML document:
//
//	suppliers:
//	  kigo:
//	    api_key: ${KIGO_API_KEY}
//	  waytostay:
//	    client_id: abc
//	    client_secret: enc:BASE64CIPHERTEXT
//	required:
//	  production: [kigo, waytostay]
//	  staging: [kigo]
//
// Values are expanded against the process environment. Values prefixed with "enc:"
// hold base64 ciphertext that is decrypted with a gocloud.dev secrets keeper.
// Missing declared fields for a supplier required on the current environment make
// Load fail; after Load the registry is read-only and lookups never do I/O.
package credentials

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/allisson/concierge/internal/errors"
)

// encryptedPrefix marks a value that must be decrypted at load time.
const encryptedPrefix = "enc:"

// ErrMissingCredentials indicates a required supplier lacks declared fields.
var ErrMissingCredentials = apperrors.Wrap(apperrors.ErrMisconfigured, "missing supplier credentials")

// Decrypter decrypts credential values. *secrets.Keeper satisfies it.
type Decrypter interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// Set is the flat collection of named secrets of one supplier.
type Set map[string]string

// Get returns a field value, or an empty string.
func (s Set) Get(field string) string {
	return s[field]
}

// Registry maps supplier names to their credential sets.
type Registry struct {
	sets map[string]Set
}

// NewRegistry builds a registry from in-memory sets. Intended for tests and
// composition roots that do not read a file.
func NewRegistry(sets map[string]Set) *Registry {
	copied := make(map[string]Set, len(sets))
	for name, set := range sets {
		fields := make(Set, len(set))
		for k, v := range set {
			fields[k] = v
		}
		copied[name] = fields
	}
	return &Registry{sets: copied}
}

// For returns the credentials of supplier. An unknown supplier is a programming
// error and panics.
func (r *Registry) For(supplier string) Set {
	set, ok := r.sets[supplier]
	if !ok {
		panic(fmt.Sprintf("credentials: unknown supplier %q", supplier))
	}
	return set
}

// Has reports whether credentials exist for supplier.
func (r *Registry) Has(supplier string) bool {
	_, ok := r.sets[supplier]
	return ok
}

// Suppliers returns the configured supplier names in sorted order.
func (r *Registry) Suppliers() []string {
	names := make([]string, 0, len(r.sets))
	for name := range r.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// file is the YAML layout of the credentials document.
type file struct {
	Suppliers map[string]map[string]string `yaml:"suppliers"`
	Required  map[string][]string          `yaml:"required"`
}

// LoadOptions configures Load.
type LoadOptions struct {
	// Environment selects the list of required suppliers.
	Environment string
	// Declarations lists the fields every supplier adapter needs.
	Declarations map[string][]string
	// Decrypter handles "enc:" values. Optional when no value is encrypted.
	Decrypter Decrypter
}

// LoadFile reads the document at path and calls Load.
func LoadFile(ctx context.Context, path string, opts LoadOptions) (*Registry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator supplied configuration path
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrMisconfigured, fmt.Sprintf("failed to read credentials file: %v", err))
	}
	return Load(ctx, data, opts)
}

// Load parses, decrypts, and validates a credentials document.
func Load(ctx context.Context, data []byte, opts LoadOptions) (*Registry, error) {
	var doc file
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrMisconfigured, fmt.Sprintf("invalid credentials document: %v", err))
	}

	sets := make(map[string]Set, len(doc.Suppliers))
	for supplier, fields := range doc.Suppliers {
		set := make(Set, len(fields))
		for field, raw := range fields {
			value, err := resolve(ctx, raw, opts.Decrypter)
			if err != nil {
				return nil, apperrors.Wrap(
					apperrors.ErrMisconfigured,
					fmt.Sprintf("supplier %q field %q: %v", supplier, field, err),
				)
			}
			set[field] = value
		}
		sets[supplier] = set
	}

	if err := validate(sets, doc.Required[opts.Environment], opts); err != nil {
		return nil, err
	}

	return &Registry{sets: sets}, nil
}

func resolve(ctx context.Context, raw string, decrypter Decrypter) (string, error) {
	value := os.Expand(raw, func(name string) string {
		v, _ := os.LookupEnv(name)
		return v
	})

	if !strings.HasPrefix(value, encryptedPrefix) {
		return value, nil
	}
	if decrypter == nil {
		return "", fmt.Errorf("encrypted value found but no keeper configured")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, encryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("invalid base64 ciphertext: %w", err)
	}
	plaintext, err := decrypter.Decrypt(ctx, ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plaintext), nil
}

func validate(sets map[string]Set, required []string, opts LoadOptions) error {
	var problems []string
	for _, supplier := range required {
		set := sets[supplier]
		var missing []string
		for _, field := range opts.Declarations[supplier] {
			if strings.TrimSpace(set[field]) == "" {
				missing = append(missing, field)
			}
		}
		if set == nil && len(missing) == 0 {
			problems = append(problems, fmt.Sprintf("%s: no credentials configured", supplier))
			continue
		}
		if len(missing) > 0 {
			problems = append(problems, fmt.Sprintf("%s: %s", supplier, strings.Join(missing, ", ")))
		}
	}

	if len(problems) > 0 {
		return apperrors.Wrap(
			ErrMissingCredentials,
			fmt.Sprintf("environment %q requires [%s]", opts.Environment, strings.Join(problems, "; ")),
		)
	}
	return nil
}
