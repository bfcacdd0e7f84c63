// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// AccountsSchemaID is the $id of the accounts file schema.
const AccountsSchemaID = "https://rolegate.dev/schemas/accounts.schema.json"

// AccountsFile is the on-disk format for seeded accounts.
type AccountsFile struct {
	Accounts []Account `yaml:"accounts" json:"accounts" jsonschema:"minItems=1"`
}

// Account is one seeded user. Exactly one of Password and PasswordHash must
// be set. A plaintext Password must satisfy the password policy.
type Account struct {
	Username     string `yaml:"username" json:"username" jsonschema:"minLength=1,maxLength=64"`
	Password     string `yaml:"password,omitempty" json:"password,omitempty" jsonschema:"minLength=1"`
	PasswordHash string `yaml:"password_hash,omitempty" json:"password_hash,omitempty" jsonschema:"minLength=1"`
	Role         string `yaml:"role" json:"role" jsonschema:"enum=viewer,enum=editor,enum=administrator"`
}

// DefaultAccounts returns the fixture accounts used when no accounts file
// is configured. They exist for authorization testing, not security.
func DefaultAccounts() []Account {
	return []Account{
		{Username: "admin", Password: "Admin@123", Role: RoleAdministrator.String()},
		{Username: "editor", Password: "Editor@123", Role: RoleEditor.String()},
		{Username: "viewer", Password: "Viewer@123", Role: RoleViewer.String()},
	}
}

var (
	accountsSchemaOnce sync.Once
	accountsSchema     *jschema.Schema
	accountsSchemaErr  error
)

// GenerateAccountsSchema generates a JSON Schema from the AccountsFile struct.
func GenerateAccountsSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&AccountsFile{})
	schema.ID = jsonschema.ID(AccountsSchemaID)
	schema.Title = "RoleGate Accounts"
	schema.Description = "Schema for accounts.yaml seed files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("ACCOUNTS_SCHEMA_FAILED").Wrap(err)
	}
	return data, nil
}

func compiledAccountsSchema() (*jschema.Schema, error) {
	accountsSchemaOnce.Do(func() {
		raw, err := GenerateAccountsSchema()
		if err != nil {
			accountsSchemaErr = err
			return
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			accountsSchemaErr = oops.Code("ACCOUNTS_SCHEMA_FAILED").Wrap(err)
			return
		}
		c := jschema.NewCompiler()
		if err := c.AddResource("accounts.schema.json", doc); err != nil {
			accountsSchemaErr = oops.Code("ACCOUNTS_SCHEMA_FAILED").Wrap(err)
			return
		}
		accountsSchema, accountsSchemaErr = c.Compile("accounts.schema.json")
	})
	return accountsSchema, accountsSchemaErr
}

// ParseAccounts validates YAML data against the accounts schema and decodes it.
func ParseAccounts(data []byte) (*AccountsFile, error) {
	if len(data) == 0 {
		return nil, oops.Code("ACCOUNTS_INVALID").Errorf("accounts data is empty")
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, oops.Code("ACCOUNTS_INVALID").Wrapf(err, "invalid YAML")
	}

	sch, err := compiledAccountsSchema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(doc); err != nil {
		return nil, oops.Code("ACCOUNTS_INVALID").Wrapf(err, "schema validation failed")
	}

	var file AccountsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, oops.Code("ACCOUNTS_INVALID").Wrap(err)
	}

	seen := make(map[string]struct{}, len(file.Accounts))
	for i, acct := range file.Accounts {
		if err := acct.validate(); err != nil {
			return nil, oops.Code("ACCOUNTS_INVALID").With("index", i).Wrap(err)
		}
		if _, dup := seen[acct.Username]; dup {
			return nil, oops.Code("ACCOUNTS_INVALID").
				With("index", i).
				With("username", acct.Username).
				Errorf("duplicate username %q", acct.Username)
		}
		seen[acct.Username] = struct{}{}
	}
	return &file, nil
}

// LoadAccountsFile reads and parses an accounts file.
func LoadAccountsFile(path string) (*AccountsFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, oops.Code("ACCOUNTS_READ_FAILED").With("path", path).Wrap(err)
	}
	file, err := ParseAccounts(data)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return file, nil
}

func (a Account) validate() error {
	if err := ValidateUsername(a.Username); err != nil {
		return err
	}
	if _, err := ParseRole(a.Role); err != nil {
		return err
	}
	switch {
	case a.Password == "" && a.PasswordHash == "":
		return fmt.Errorf("account %q needs password or password_hash", a.Username)
	case a.Password != "" && a.PasswordHash != "":
		return fmt.Errorf("account %q sets both password and password_hash", a.Username)
	case a.Password != "":
		if result := ValidatePassword(a.Password); !result.IsValid {
			return oops.Code(CodeWeakPassword).
				With("username", a.Username).
				With(violationsKey, result.Violations).
				Errorf("password for %q does not meet requirements", a.Username)
		}
	default:
		if err := ValidateHash(a.PasswordHash); err != nil {
			return oops.With("username", a.Username).
				Wrapf(err, "password_hash for %q is not a usable argon2id or bcrypt hash", a.Username)
		}
	}
	return nil
}

// SeedAccounts inserts accounts that are not already present and returns
// the number created. Existing usernames are skipped so seeding is idempotent.
func SeedAccounts(ctx context.Context, users UserRepository, hasher PasswordHasher, accounts []Account, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	created := 0
	for _, acct := range accounts {
		if err := acct.validate(); err != nil {
			return created, oops.Code("ACCOUNTS_INVALID").Wrap(err)
		}
		role, _ := ParseRole(acct.Role) //nolint:errcheck // validated above

		if _, err := users.GetByUsername(ctx, acct.Username); err == nil {
			logger.DebugContext(ctx, "account already present", "username", acct.Username)
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return created, oops.Code("ACCOUNTS_SEED_FAILED").With("username", acct.Username).Wrap(err)
		}

		hash := acct.PasswordHash
		if hash == "" {
			h, err := hasher.Hash(acct.Password)
			if err != nil {
				return created, oops.Code("ACCOUNTS_SEED_FAILED").With("username", acct.Username).Wrap(err)
			}
			hash = h
		} else if hasher.NeedsUpgrade(hash) {
			logger.WarnContext(ctx, "seeded account uses a legacy bcrypt password hash", "username", acct.Username)
		}

		if _, err := users.Create(ctx, acct.Username, hash, role); err != nil {
			return created, oops.Code("ACCOUNTS_SEED_FAILED").With("username", acct.Username).Wrap(err)
		}
		created++
	}
	logger.InfoContext(ctx, "accounts seeded", "created", created, "total", len(accounts))
	return created, nil
}
