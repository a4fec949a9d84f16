package handlers

import (
	"github.com/gofiber/fiber/v2"
)

const appName = "EnJp Bridge"

// LegalHandler serves the static policy pages App Store review links
// to. Public, no auth.
type LegalHandler struct{}

func NewLegalHandler() *LegalHandler {
	return &LegalHandler{}
}

func (h *LegalHandler) PrivacyPolicy(c *fiber.Ctx) error {
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>Privacy Policy - ` + appName + `</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>body{font-family:-apple-system,BlinkMacSystemFont,sans-serif;max-width:800px;margin:0 auto;padding:20px;color:#333}h1{color:#1a1a1a}h2{color:#444;margin-top:30px}</style>
</head><body>
<h1>Privacy Policy</h1>
<p>Last updated: August 2026</p>
<h2>Information We Collect</h2>
<p>We collect your email address, nickname, chosen language and the messages you exchange within the app. If you sign in with Apple, we receive your Apple ID identifier.</p>
<h2>How We Use Your Information</h2>
<p>Your data is used solely to operate ` + appName + `, match you with language exchange partners, deliver your messages and translations, and keep the community safe.</p>
<h2>Message Translation</h2>
<p>Message text may be sent to third-party translation services to produce the translated view your partner requested.</p>
<h2>Data Storage</h2>
<p>Your data is stored securely on encrypted servers. We do not sell your personal information to third parties.</p>
<h2>Account Deletion</h2>
<p>You can delete your account and all associated data at any time from the app settings.</p>
<h2>Contact</h2>
<p>For questions about this policy, contact us at support@enjpbridge.app</p>
</body></html>`)
}

func (h *LegalHandler) TermsOfService(c *fiber.Ctx) error {
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>Terms of Service - ` + appName + `</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>body{font-family:-apple-system,BlinkMacSystemFont,sans-serif;max-width:800px;margin:0 auto;padding:20px;color:#333}h1{color:#1a1a1a}h2{color:#444;margin-top:30px}</style>
</head><body>
<h1>Terms of Service</h1>
<p>Last updated: August 2026</p>
<h2>Acceptance</h2>
<p>By using ` + appName + `, you agree to these terms.</p>
<h2>User Conduct</h2>
<p>You agree not to send offensive, illegal, or harmful content, including attempts to share contact details for off-platform communication. We reserve the right to moderate and remove content that violates our guidelines, and to suspend accounts reported by other members.</p>
<h2>Purchases</h2>
<p>The ad-free upgrade is a one-time purchase managed through the App Store.</p>
<h2>Termination</h2>
<p>We may suspend or terminate accounts that violate these terms.</p>
<h2>Contact</h2>
<p>For questions, contact us at support@enjpbridge.app</p>
</body></html>`)
}
