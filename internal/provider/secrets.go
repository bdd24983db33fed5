package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/zricethezav/gitleaks/v8/detect"

	"github.com/tinovyatkin/vcoder/internal/workspace"
)

const secretsSource = "gitleaks"

// loadDetector builds the gitleaks detector with its default rule set once;
// compiling the rules is expensive.
var loadDetector = sync.OnceValues(detect.NewDetectorDefaultConfig)

// Secrets reports likely credentials in a document as warnings.
type Secrets struct{}

// Analyze scans text with the gitleaks default rules.
func (Secrets) Analyze(ctx context.Context, text string) ([]workspace.Diagnostic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	detector, err := loadDetector()
	if err != nil {
		return nil, fmt.Errorf("load secret rules: %w", err)
	}

	findings := detector.DetectString(text)
	diags := make([]workspace.Diagnostic, 0, len(findings))
	for _, f := range findings {
		diags = append(diags, workspace.Diagnostic{
			// gitleaks reports 0-based lines for in-memory content.
			Line:     max(f.StartLine+1, 1),
			Column:   max(f.StartColumn, 1),
			Message:  fmt.Sprintf("Possible secret (%s): %s", f.RuleID, f.Description),
			Severity: workspace.SeverityWarning,
			Source:   secretsSource,
		})
	}
	return diags, nil
}
