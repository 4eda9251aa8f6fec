package password

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
)

// Argon2idParams controls Argon2id hashing cost.
// MemoryKiB is in KiB as required by argon2.IDKey.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Policy controls password validation and anti-DoS boundaries.
type Policy struct {
	MinLength int
	MaxLength int
}

// Config is the single configuration surface for this package.
type Config struct {
	Params Argon2idParams
	Policy Policy
}

// DefaultConfig returns the baseline hashing cost and account policy.
// The cost is tuned to be comparable to a bcrypt cost-12 work factor on
// interactive logins; values can be overridden via env.
func DefaultConfig() Config {
	// Clamp parallelism to [1..4] to keep resource usage predictable in
	// containers.
	threads := runtime.NumCPU()
	if threads <= 0 {
		threads = 1
	}
	if threads > 4 {
		threads = 4
	}

	return Config{
		Params: Argon2idParams{
			MemoryKiB:   64 * 1024, // 64 MiB
			Iterations:  3,
			Parallelism: uint8(threads), // #nosec G115 -- clamped to [1..4] above; safe conversion.
			SaltLength:  16,
			KeyLength:   32,
		},
		Policy: Policy{
			MinLength: 6,
			MaxLength: 256,
		},
	}
}

// FromEnv loads config from environment variables.
//
// Env surface:
//   - GATEHOUSE_PASSWORD_MIN_LEN
//   - GATEHOUSE_PASSWORD_MAX_LEN
//   - GATEHOUSE_ARGON2_MEMORY_KIB
//   - GATEHOUSE_ARGON2_ITERATIONS
//   - GATEHOUSE_ARGON2_PARALLELISM
//   - GATEHOUSE_ARGON2_SALT_LEN
//   - GATEHOUSE_ARGON2_KEY_LEN
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv("GATEHOUSE_PASSWORD_MIN_LEN"); ok {
		n, err := atoiBounded(v, 1, 1024)
		if err != nil {
			return Config{}, fmt.Errorf("GATEHOUSE_PASSWORD_MIN_LEN: %w", err)
		}
		cfg.Policy.MinLength = n
	}

	if v, ok := os.LookupEnv("GATEHOUSE_PASSWORD_MAX_LEN"); ok {
		n, err := atoiBounded(v, 1, 4096)
		if err != nil {
			return Config{}, fmt.Errorf("GATEHOUSE_PASSWORD_MAX_LEN: %w", err)
		}
		cfg.Policy.MaxLength = n
	}

	if cfg.Policy.MaxLength < cfg.Policy.MinLength {
		return Config{}, fmt.Errorf("password policy: max length %d below min length %d", cfg.Policy.MaxLength, cfg.Policy.MinLength)
	}

	if v, ok := os.LookupEnv("GATEHOUSE_ARGON2_MEMORY_KIB"); ok {
		n, err := atoiBounded(v, 8*1024, 1024*1024)
		if err != nil {
			return Config{}, fmt.Errorf("GATEHOUSE_ARGON2_MEMORY_KIB: %w", err)
		}
		cfg.Params.MemoryKiB = uint32(n) // #nosec G115 -- bounded above; safe conversion.
	}

	if v, ok := os.LookupEnv("GATEHOUSE_ARGON2_ITERATIONS"); ok {
		n, err := atoiBounded(v, 1, 32)
		if err != nil {
			return Config{}, fmt.Errorf("GATEHOUSE_ARGON2_ITERATIONS: %w", err)
		}
		cfg.Params.Iterations = uint32(n) // #nosec G115 -- bounded above; safe conversion.
	}

	if v, ok := os.LookupEnv("GATEHOUSE_ARGON2_PARALLELISM"); ok {
		n, err := atoiBounded(v, 1, 16)
		if err != nil {
			return Config{}, fmt.Errorf("GATEHOUSE_ARGON2_PARALLELISM: %w", err)
		}
		cfg.Params.Parallelism = uint8(n) // #nosec G115 -- bounded above; safe conversion.
	}

	if v, ok := os.LookupEnv("GATEHOUSE_ARGON2_SALT_LEN"); ok {
		n, err := atoiBounded(v, 8, 64)
		if err != nil {
			return Config{}, fmt.Errorf("GATEHOUSE_ARGON2_SALT_LEN: %w", err)
		}
		cfg.Params.SaltLength = uint32(n) // #nosec G115 -- bounded above; safe conversion.
	}

	if v, ok := os.LookupEnv("GATEHOUSE_ARGON2_KEY_LEN"); ok {
		n, err := atoiBounded(v, 16, 128)
		if err != nil {
			return Config{}, fmt.Errorf("GATEHOUSE_ARGON2_KEY_LEN: %w", err)
		}
		cfg.Params.KeyLength = uint32(n) // #nosec G115 -- bounded above; safe conversion.
	}

	return cfg, nil
}

func atoiBounded(v string, min, max int) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", v)
	}
	if n < min || n > max {
		return 0, fmt.Errorf("value %d outside [%d..%d]", n, min, max)
	}
	return n, nil
}
