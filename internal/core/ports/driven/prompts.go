package driven

// PromptStore resolves prompt text by profile and name.
// Get returns domain.ErrPromptNotFound when the profile has no such prompt;
// falling back to the default profile is the caller's second lookup.
type PromptStore interface {
	// Get returns the prompt text for name within profile.
	Get(profile, name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptSystem is the base system prompt.
	PromptSystem = "system"

	// PromptSystemPrefix prefixes an action-specific system appendage.
	PromptSystemPrefix = "system_"
)
