package domain

import (
	assessmentdomain "github.com/smallbiznis/pulse/internal/assessment/domain"
	campaigndomain "github.com/smallbiznis/pulse/internal/campaign/domain"
	rosterdomain "github.com/smallbiznis/pulse/internal/roster/domain"
)

type AdminView struct {
	Campaigns []campaigndomain.Campaign `json:"campaigns"`
	Results   []assessmentdomain.Result `json:"results"`
}

type ManagerView struct {
	Campaigns []campaigndomain.Campaign `json:"campaigns"`
	Results   []assessmentdomain.Result `json:"results"`
	Roster    []rosterdomain.TeamMember `json:"roster"`
}
