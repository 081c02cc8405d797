package notify

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Mailer renders storefront notifications and hands them to a Sender.
type Mailer struct {
	sender Sender
	admins []string
	site   string
}

func NewMailer(sender Sender, site string, admins ...string) *Mailer {
	return &Mailer{sender: sender, admins: admins, site: site}
}

func currencySymbol(code string) string {
	if strings.EqualFold(code, "INR") || code == "" {
		return "₹"
	}

	return code + " "
}

func (m *Mailer) PurchaseConfirmed(ctx context.Context, p Purchase) error {
	name := p.CustomerName
	if name == "" {
		name = "customer"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Dear %s,\n\n", name)
	fmt.Fprintf(&b, "Thank you for your purchase from %s!\n\n", m.site)
	b.WriteString("Order Details:\n")
	fmt.Fprintf(&b, "- Order ID: %s\n", p.OrderID)
	fmt.Fprintf(&b, "- Project: %s\n", p.ProjectTitle)
	fmt.Fprintf(&b, "- Amount: %s%s\n\n", currencySymbol(p.Currency), p.Amount.StringFixed(2))
	b.WriteString("You can download your project from your dashboard.\n\n")
	fmt.Fprintf(&b, "Best regards,\n%s Team\n", m.site)

	return m.sender.Send(ctx, Email{
		To:      []string{p.CustomerEmail},
		Subject: "Purchase Confirmation - " + p.ProjectTitle,
		Body:    b.String(),
	})
}

func (m *Mailer) CustomRequestReceived(ctx context.Context, r CustomRequest) error {
	if len(m.admins) == 0 {
		return fmt.Errorf("no admin address configured")
	}

	var b strings.Builder

	b.WriteString("New custom project request received:\n\n")
	fmt.Fprintf(&b, "Name: %s\n", r.Name)
	fmt.Fprintf(&b, "Email: %s\n", r.Email)
	fmt.Fprintf(&b, "Phone: %s\n", r.Phone)
	fmt.Fprintf(&b, "Project Type: %s\n", r.ProjectType)
	fmt.Fprintf(&b, "Deadline: %s\n", r.Deadline.Format(time.DateOnly))
	fmt.Fprintf(&b, "Budget: ₹%s\n\n", r.Budget.StringFixed(2))
	fmt.Fprintf(&b, "Description:\n%s\n\n", r.Description)
	fmt.Fprintf(&b, "%s System\n", m.site)

	return m.sender.Send(ctx, Email{
		To:      m.admins,
		Subject: "New Custom Project Request - " + r.ProjectType,
		Body:    b.String(),
	})
}
