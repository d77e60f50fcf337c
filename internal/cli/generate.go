package cli

import (
	"fmt"
	"os"

	"github.com/ralt/aptgen/internal/deb"
	"github.com/ralt/aptgen/internal/generator"
	"github.com/ralt/aptgen/internal/models"
	"github.com/ralt/aptgen/internal/signer"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewGenerateCmd creates the generate command
func NewGenerateCmd() *cobra.Command {
	var config models.RepositoryConfig
	var useDpkg bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate repository indices and the signed Release manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateConfig(&config); err != nil {
				return err
			}

			logrus.Info("Starting repository metadata generation...")
			logrus.Debugf("Configuration: %+v", config)

			var extractor deb.Extractor
			if useDpkg {
				extractor = deb.NewDpkgExtractor()
			} else {
				extractor = deb.NewNativeExtractor()
			}

			s, err := newSigner(&config)
			if err != nil {
				return err
			}

			return generator.NewGenerator(extractor, s).Generate(cmd.Context(), &config)
		},
	}

	cmd.Flags().StringVarP(&config.RootDir, "root", "r", ".", "Repository root directory")
	cmd.Flags().StringVar(&config.PoolDir, "pool", "pool", "Package pool subdirectory under the root")

	cmd.Flags().StringVar(&config.Origin, "origin", "", "Repository origin name")
	cmd.Flags().StringVar(&config.Label, "label", "", "Repository label")
	cmd.Flags().StringVarP(&config.Codename, "codename", "c", "", "Distribution codename (required)")
	cmd.Flags().StringVar(&config.Suite, "suite", "", "Suite (defaults to codename)")

	cmd.Flags().StringVarP(&config.GPGKey, "gpg-key", "k", "", "Signing key identity; empty disables signing")
	cmd.Flags().StringVarP(&config.GPGPassphrase, "passphrase", "p", "", "Signing key passphrase")
	cmd.Flags().StringVar(&config.PassphraseFile, "passphrase-file", "", "File containing the signing key passphrase")
	cmd.Flags().StringVar(&config.SecretKeyring, "secret-keyring", "", "Key material file imported into a private keyring for signing")
	cmd.Flags().StringVar(&config.PGPProvider, "pgp-provider", "gpg", "Signing implementation: gpg (external) or internal (openpgp)")

	cmd.Flags().BoolVar(&useDpkg, "use-dpkg", false, "Extract package metadata with dpkg-deb/dpkg instead of in-process")

	return cmd
}

func validateConfig(config *models.RepositoryConfig) error {
	if config.Codename == "" {
		return &models.RepoError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("codename is required"),
		}
	}
	if config.Suite == "" {
		config.Suite = config.Codename
	}
	config.Components = []string{"main"}

	if info, err := os.Stat(config.RootDir); err != nil || !info.IsDir() {
		return &models.RepoError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("root directory %s does not exist", config.RootDir),
		}
	}

	return nil
}

func newSigner(config *models.RepositoryConfig) (signer.ReleaseSigner, error) {
	if config.GPGKey == "" {
		return nil, nil
	}

	switch config.PGPProvider {
	case "gpg":
		return signer.NewGpgSigner(config), nil
	case "internal":
		s, err := signer.NewOpenPGPSigner(config)
		if err != nil {
			return nil, &models.RepoError{Type: models.ErrSigning, Err: err}
		}
		return s, nil
	default:
		return nil, &models.RepoError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("unknown pgp provider %q", config.PGPProvider),
		}
	}
}
