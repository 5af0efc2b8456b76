package pattern

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/flcheck/internal/common"
	"github.com/Veraticus/flcheck/internal/model"
)

// GenericMask is the technology independent shape every functional location must have:
// up to six dash separated levels of 3, 4, 2, 2-3, 2-3 and 2 upper case alphanumerics.
const GenericMask = `^(?:([A-Z0-9]{3})(?:-([A-Z0-9]{4})(?:-([A-Z0-9]{2})(?:-([A-Z0-9]{2,3})(?:-([A-Z0-9]{2,3})(?:-([A-Z0-9]{2}))?)?)?)?)?)?$`

var genericMask = regexp.MustCompile(GenericMask)

// MaskViolation is an input line that does not respect GenericMask.
type MaskViolation struct {
	Code string
	Line int
}

// Finding converts the violation into a structural finding.
func (v MaskViolation) Finding() model.Finding {
	return model.NewFinding(model.FindingMaskViolation, v.Code, "line %d does not respect the functional location mask", v.Line)
}

// CheckGenericMask checks each line against GenericMask. Line numbers are 1-based positions
// in lines. When any line fails, the violations are returned together with an error
// wrapping ErrMaskViolation.
func CheckGenericMask(lines []string) ([]MaskViolation, error) {
	var violations []MaskViolation
	for i, line := range lines {
		code := strings.TrimSpace(line)
		if !genericMask.MatchString(code) {
			violations = append(violations, MaskViolation{Code: code, Line: i + 1})
		}
	}
	if len(violations) == 0 {
		return nil, nil
	}

	lineNumbers := make([]string, len(violations))
	for i, v := range violations {
		lineNumbers[i] = fmt.Sprint(v.Line)
	}
	return violations, fmt.Errorf("%w: lines %s", common.ErrMaskViolation, strings.Join(lineNumbers, ", "))
}
