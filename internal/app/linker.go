package app

import (
	"context"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// AssistantLinker binds an assistant to a tenant's platform number.
type AssistantLinker struct {
	platform domain.VoicePlatform
}

func NewAssistantLinker(platform domain.VoicePlatform) *AssistantLinker {
	return &AssistantLinker{platform: platform}
}

// Link overwrites any previous binding of the number. Assignments without a
// platform number have nothing to bind and return nil.
func (l *AssistantLinker) Link(ctx context.Context, phone domain.PhoneNumberAssignment, assistant domain.AssistantAssignment) error {
	if !phone.Linkable() {
		return nil
	}
	return l.platform.LinkAssistant(ctx, phone.PhoneNumberID, assistant.AssistantID)
}
