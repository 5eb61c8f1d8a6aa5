package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/supportportal/internal/client/client"
	"github.com/dmitrijs2005/supportportal/internal/client/models"
	"github.com/dustin/go-humanize"
)

func printUsers(w io.Writer, users []models.User) {
	if len(users) == 0 {
		_, _ = fmt.Fprintln(w, "No users.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "USERNAME\tNAME\tEMAIL\tROLE\tSTATUS")
	for _, u := range users {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.Username, u.FullName(), u.Email, roleName(u.Role), userStatus(u))
	}
	_ = tw.Flush()
}

func printStats(w io.Writer, stats []client.RequestStat) {
	if len(stats) == 0 {
		_, _ = fmt.Fprintln(w, "No remote calls yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "OPERATION\tSTATUS\tCALLS\tMEAN")
	for _, s := range stats {
		code := s.Code
		if code == "0" {
			code = "no response"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Op, code, humanize.Comma(int64(s.Count)), s.Mean.Round(time.Millisecond))
	}
	_ = tw.Flush()
}

func printUser(w io.Writer, u models.User) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row := func(k, v string) { _, _ = fmt.Fprintf(tw, "%s:\t%s\n", k, v) }

	row("User ID", u.UserID)
	row("Username", u.Username)
	row("Name", u.FullName())
	row("Email", u.Email)
	row("Role", roleName(u.Role))
	row("Status", userStatus(u))
	if len(u.Authorities) > 0 {
		row("Authorities", strings.Join(u.Authorities, ", "))
	}
	if u.JoinDate != nil {
		row("Joined", humanize.Time(*u.JoinDate))
	}
	if u.LastLoginDateDisplay != nil {
		row("Last login", humanize.Time(*u.LastLoginDateDisplay))
	}
	if u.ProfileImageURL != "" {
		row("Image", u.ProfileImageURL)
	}
	_ = tw.Flush()
}

// roleName drops the ROLE_ prefix the backend uses.
func roleName(role string) string {
	return strings.TrimPrefix(role, "ROLE_")
}

func userStatus(u models.User) string {
	s := "inactive"
	if u.Active {
		s = "active"
	}
	if !u.NotLocked {
		s += ", locked"
	}
	return s
}
