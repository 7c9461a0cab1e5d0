package handler

import (
	"github.com/clinicdesk/health-records/internal/core/domain"
	"github.com/clinicdesk/health-records/internal/core/ports"
)

func toClientInput(req *clientRequest, actor string) ports.ClientInput {
	return ports.ClientInput{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Phone:            req.Phone,
		DateOfBirth:      req.DateOfBirth,
		Address:          req.Address,
		Gender:           req.Gender,
		EmergencyContact: req.EmergencyContact,
		Actor:            actor,
	}
}

func toClientResponse(c *domain.Client) clientResponse {
	resp := clientResponse{
		ID:               c.ID,
		FirstName:        c.FirstName,
		LastName:         c.LastName,
		Email:            c.Email,
		Phone:            c.Phone,
		Address:          c.Address,
		Gender:           c.Gender,
		EmergencyContact: c.EmergencyContact,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
		Programs:         make([]programSummaryResponse, 0, len(c.Programs)),
	}
	if c.DateOfBirth != nil {
		dob := c.DateOfBirth.Format(domain.DateLayout)
		resp.DateOfBirth = &dob
	}
	for _, p := range c.Programs {
		resp.Programs = append(resp.Programs, programSummaryResponse{ID: p.ID, Name: p.Name})
	}
	return resp
}

func toClientResponses(clients []*domain.Client) []clientResponse {
	out := make([]clientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, toClientResponse(c))
	}
	return out
}

func toProgramResponse(p *domain.Program) programResponse {
	return programResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProgramResponses(programs []*domain.Program) []programResponse {
	out := make([]programResponse, 0, len(programs))
	for _, p := range programs {
		out = append(out, toProgramResponse(p))
	}
	return out
}
