package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// KaggleCredentials is the content of a kaggle.json API token file.
type KaggleCredentials struct {
	Username string `json:"username"`
	Key      string `json:"key"`
}

// SetupKaggleCredentials resolves Kaggle API credentials. Environment
// variables win; otherwise the local credential file is read and copied
// into ~/.kaggle/kaggle.json with restricted permissions, which is the
// location the Kaggle API expects.
func SetupKaggleCredentials(localPath string) (*KaggleCredentials, error) {
	if username, key := os.Getenv("KAGGLE_USERNAME"), os.Getenv("KAGGLE_KEY"); username != "" && key != "" {
		return &KaggleCredentials{Username: username, Key: key}, nil
	}

	creds, err := readCredentialsFile(localPath)
	if err != nil {
		return nil, fmt.Errorf(
			"kaggle credentials not found: set KAGGLE_USERNAME/KAGGLE_KEY or place kaggle.json at %s "+
				"(create one at https://www.kaggle.com/settings -> API): %w", localPath, err)
	}

	if err := installCredentialsFile(localPath); err != nil {
		return nil, err
	}

	return creds, nil
}

func readCredentialsFile(path string) (*KaggleCredentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var creds KaggleCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if creds.Username == "" || creds.Key == "" {
		return nil, fmt.Errorf("%s is missing username or key", path)
	}

	return &creds, nil
}

// installCredentialsFile copies the credential file into ~/.kaggle if it is
// not already there. The 0600 mode is required by the Kaggle API.
func installCredentialsFile(localPath string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to resolve home directory: %w", err)
	}

	kaggleDir := filepath.Join(home, ".kaggle")
	target := filepath.Join(kaggleDir, "kaggle.json")
	if _, err := os.Stat(target); err == nil {
		return nil
	}

	if err := os.MkdirAll(kaggleDir, 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", kaggleDir, err)
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", localPath, err)
	}

	if err := os.WriteFile(target, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}

	return nil
}
