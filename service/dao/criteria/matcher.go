package criteria

import (
	"github.com/viant/toolgate/service/dao"
)

// FilterByStatus reports whether a record with the given status survives the
// supplied list parameters. Stores use it to honour queries such as
// List(ctx, dao.NewParameter("Status", "queued")).
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
