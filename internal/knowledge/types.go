// Package knowledge holds the read-only snapshot the dialogue engine reasons
// over: company data, the product catalog, the FAQ list and the assistant
// configuration. Snapshots are immutable once built and may be hot-swapped
// between turns without resetting conversation state.
package knowledge

// Company describes the business the assistant speaks for.
type Company struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Address     string `yaml:"address" json:"address"`
	Hours       string `yaml:"hours" json:"hours"`
	Phone       string `yaml:"phone" json:"phone"`
	Email       string `yaml:"email" json:"email"`
	Website     string `yaml:"website" json:"website"`
}

// Product is one catalog entry. Price is an optional display string; pricing
// logic lives in the CRM, the engine only quotes it.
type Product struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Category    string   `yaml:"category" json:"category"`
	Price       string   `yaml:"price,omitempty" json:"price,omitempty"`
	Keywords    []string `yaml:"keywords" json:"keywords"`
	IsActive    bool     `yaml:"active" json:"active"`
}

// FAQItem is one frequently-asked-question entry.
type FAQItem struct {
	ID       string   `yaml:"id" json:"id"`
	Question string   `yaml:"question" json:"question"`
	Answer   string   `yaml:"answer" json:"answer"`
	Category string   `yaml:"category" json:"category"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// AIConfig carries the assistant voice settings.
type AIConfig struct {
	ToneOfVoice string `yaml:"tone_of_voice" json:"tone_of_voice"`
	Greeting    string `yaml:"greeting" json:"greeting"`
}

// Context bundles everything the engine needs for one turn.
type Context struct {
	Company  Company   `yaml:"company" json:"company"`
	Products []Product `yaml:"products" json:"products"`
	FAQs     []FAQItem `yaml:"faqs" json:"faqs"`
	AI       AIConfig  `yaml:"ai" json:"ai"`
}
