package modules

// Module keys. Every entitlement row, queue payload and settings blob refers
// to modules by these keys.
const (
	KeyTextViral       = "module.text_viral"
	KeyURLScanner      = "module.url_scanner"
	KeyAuthorityImage  = "module.authority_image"
	KeyShortsGenerator = "module.shorts_generator"
	KeyImageViral      = "module.image_viral_nanobanana_pro"
	KeyBrandVoice      = "module.brand_voice"
	KeyPlan            = "module.plan"
)

// ModuleConfig is a catalog descriptor. The catalog below is the only source
// of module metadata: the seeder, the marketplace route, the grant flow and
// the worker registry all consume it.
type ModuleConfig struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	// Price in cents, one-time purchase.
	Price           int      `json:"price"`
	Category        string   `json:"category"`
	Icon            string   `json:"icon"`
	RequiredAPIKeys []string `json:"requiredApiKeys,omitempty"`
	Active          bool     `json:"active"`
}

var catalog = []ModuleConfig{
	{
		Key:             KeyTextViral,
		Name:            "Viral Text Generator",
		Description:     "Generate optimized posts for LinkedIn, X, and Facebook.",
		Price:           2900,
		Category:        "generation",
		Icon:            "✍️",
		RequiredAPIKeys: []string{"gemini"},
		Active:          true,
	},
	{
		Key:             KeyURLScanner,
		Name:            "URL Content Scanner",
		Description:     "Repurpose articles and web pages into viral social posts.",
		Price:           3900,
		Category:        "generation",
		Icon:            "🔗",
		RequiredAPIKeys: []string{"gemini"},
		Active:          true,
	},
	{
		Key:         KeyAuthorityImage,
		Name:        "Authority Image Generator",
		Description: "Create branded 1080x1350 quote images for Instagram, Pinterest & Facebook.",
		Price:       4900,
		Category:    "generation",
		Icon:        "🖼️",
		Active:      true,
	},
	{
		Key:             KeyShortsGenerator,
		Name:            "Viral Shorts Script Generator",
		Description:     "Create 60-second video scripts for TikTok, Reels & YouTube Shorts.",
		Price:           2900,
		Category:        "generation",
		Icon:            "🎬",
		RequiredAPIKeys: []string{"gemini"},
		Active:          true,
	},
	{
		Key:             KeyImageViral,
		Name:            "Viral Image Generator (AI)",
		Description:     "Generate AI images using Gemini/Imagen.",
		Price:           4900,
		Category:        "generation",
		Icon:            "🌟",
		RequiredAPIKeys: []string{"gemini"},
		Active:          true,
	},
	{
		Key:         KeyBrandVoice,
		Name:        "Brand Voice",
		Description: "Define reusable voice profiles that steer generated content.",
		Price:       1900,
		Category:    "branding",
		Icon:        "🗣️",
		Active:      true,
	},
	{
		Key:         KeyPlan,
		Name:        "Schedule Planner",
		Description: "Plan posting slots across your content calendar.",
		Price:       0,
		Category:    "automation",
		Icon:        "🗓️",
		Active:      true,
	},
}

// Catalog returns a copy of the module catalog.
func Catalog() []ModuleConfig {
	out := make([]ModuleConfig, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a catalog entry by key.
func Lookup(key string) (ModuleConfig, bool) {
	for _, m := range catalog {
		if m.Key == key {
			return m, true
		}
	}
	return ModuleConfig{}, false
}
