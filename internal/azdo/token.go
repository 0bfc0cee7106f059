package azdo

import (
	"errors"
	"os"
	"strings"
)

type PATSource string

const (
	PATSourceExplicit PATSource = "explicit"
	PATSourceEnv      PATSource = "env:ADO_PAT"
	PATSourceAzureEnv PATSource = "env:AZURE_DEVOPS_EXT_PAT"
)

// ResolvePAT resolves an Azure DevOps personal access token.
//
// Precedence:
//  1. provided (if non-empty)
//  2. ADO_PAT env var
//  3. AZURE_DEVOPS_EXT_PAT env var (the Azure CLI devops extension convention)
//
// It never prints the token.
func ResolvePAT(provided string) (pat string, source PATSource, err error) {
	if tok := strings.TrimSpace(provided); tok != "" {
		if err := checkPAT(tok); err != nil {
			return "", "", err
		}
		return tok, PATSourceExplicit, nil
	}

	if env := strings.TrimSpace(os.Getenv("ADO_PAT")); env != "" {
		if err := checkPAT(env); err != nil {
			return "", "", err
		}
		return env, PATSourceEnv, nil
	}

	if env := strings.TrimSpace(os.Getenv("AZURE_DEVOPS_EXT_PAT")); env != "" {
		if err := checkPAT(env); err != nil {
			return "", "", err
		}
		return env, PATSourceAzureEnv, nil
	}

	return "", "", nil
}

func checkPAT(tok string) error {
	// Basic sanity: tokens must not contain whitespace.
	if strings.ContainsAny(tok, " \t\n\r") {
		return errors.New("invalid personal access token: contains whitespace")
	}
	return nil
}
