package client

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/okian/skillmatch/internal/domain/types"
)

// WriteTable renders recommendations as an aligned text table.
func WriteTable(w io.Writer, recs []types.Recommendation) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tEMPLOYEE\tNAME\tTEAM\tEFFICIENCY\tMATCH\tSKILLS")
	for i, r := range recs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\t%.2f\t%s\n",
			i+1, r.EmployeeID, r.Name, r.Team, r.PredictedEfficiency, r.SkillMatch, strings.Join(r.Skills, ", "))
	}
	return tw.Flush()
}
