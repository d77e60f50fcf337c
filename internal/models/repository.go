package models

// RepositoryConfig contains the validated configuration for one generation
// run. It is constructed once by the caller and never mutated by the pipeline.
type RepositoryConfig struct {
	// Input/Output
	RootDir string // repository root; indices land under RootDir/dists
	PoolDir string // package pool subdirectory under RootDir

	// Repository metadata
	Origin     string // optional
	Label      string // optional
	Codename   string // mandatory
	Suite      string // defaults to Codename upstream
	Components []string

	// Signing
	GPGKey         string // key identity; empty disables signing
	GPGPassphrase  string
	PassphraseFile string
	SecretKeyring  string // key material to import into a private keyring
	PGPProvider    string // "gpg" (external) or "internal" (openpgp)
}
