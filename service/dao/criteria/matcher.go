// Package criteria provides shared List filter evaluation for DAO
// implementations.
package criteria

import (
	"github.com/gatekit/gatekit/service/dao"
)

// FilterByStatus evaluates a Status filter parameter against the supplied
// status value. An empty parameter set matches everything.
func FilterByStatus(status string, parameters []*dao.Parameter) bool {
	switch len(parameters) {
	case 0:
		return true
	case 1:
		if parameters[0].Name == "Status" {
			switch actual := parameters[0].Value.(type) {
			case string:
				return status == actual
			case []string:
				for _, s := range actual {
					if status == s {
						return true
					}
				}
				return false
			}
		}
	}
	return true
}
