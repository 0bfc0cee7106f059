package inventory

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"time"

	"adoscan/internal/azdo"
)

// SecretMask replaces secret variable values in records. The API never
// returns secret values, but masking here keeps exports unambiguous.
const SecretMask = "***"

// VariableGroupRecord is one variable of one variable group, flattened
// with provenance.
type VariableGroupRecord struct {
	XMLName      xml.Name  `json:"-" xml:"variable"`
	Organization string    `json:"organization" xml:"organization"`
	Project      string    `json:"project" xml:"project"`
	GroupID      int       `json:"groupId" xml:"groupId"`
	GroupName    string    `json:"groupName" xml:"groupName"`
	VariableName string    `json:"variableName" xml:"variableName"`
	Value        string    `json:"value" xml:"value"`
	IsSecret     bool      `json:"isSecret" xml:"isSecret"`
	ModifiedBy   string    `json:"modifiedBy" xml:"modifiedBy"`
	ModifiedDate time.Time `json:"modifiedDate" xml:"modifiedDate"`
}

func (r VariableGroupRecord) Header() []string {
	return []string{
		"Organization", "Project", "GroupID", "GroupName", "VariableName",
		"Value", "IsSecret", "ModifiedBy", "ModifiedDate",
	}
}

func (r VariableGroupRecord) Row() []string {
	return []string{
		r.Organization, r.Project, strconv.Itoa(r.GroupID), r.GroupName,
		r.VariableName, r.Value, strconv.FormatBool(r.IsSecret),
		r.ModifiedBy, r.ModifiedDate.UTC().Format(time.RFC3339),
	}
}

func (r VariableGroupRecord) SortKey() string {
	return fmt.Sprintf("%s/%s/%010d/%s", r.Organization, r.Project, r.GroupID, r.VariableName)
}

// VariableGroupRecords expands variable groups into one record per
// variable, sorted by variable name within each group. Secret variables are
// dropped unless includeSecrets is set; their values are always masked.
func VariableGroupRecords(org, project string, groups []azdo.VariableGroup, includeSecrets bool) []Record {
	var records []Record
	for _, g := range groups {
		names := make([]string, 0, len(g.Variables))
		for name := range g.Variables {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			v := g.Variables[name]
			if v.IsSecret && !includeSecrets {
				continue
			}
			value := v.Value
			if v.IsSecret {
				value = SecretMask
			}
			records = append(records, VariableGroupRecord{
				Organization: org,
				Project:      project,
				GroupID:      g.ID,
				GroupName:    g.Name,
				VariableName: name,
				Value:        value,
				IsSecret:     v.IsSecret,
				ModifiedBy:   g.ModifiedBy.DisplayName,
				ModifiedDate: g.ModifiedOn,
			})
		}
	}
	return records
}
