package permissions

func init() {
	defs := []*Definition{
		{Codename: "leads.view_lead", Description: "View leads"},
		{Codename: "leads.add_lead", Description: "Create new leads"},
		{Codename: "leads.change_lead", Description: "Edit existing leads"},
		{Codename: "leads.delete_lead", Description: "Delete leads"},
		{Codename: "contacts.view_contact", Description: "View contacts"},
		{Codename: "contacts.add_contact", Description: "Create contacts"},
		{Codename: "contacts.change_contact", Description: "Edit contacts"},
		{Codename: "deals.view_deal", Description: "View deals"},
		{Codename: "deals.change_deal", Description: "Edit deals in the pipeline"},
		{Codename: "marketing.view_campaign", Description: "View marketing campaigns"},
		{Codename: "marketing.change_campaign", Description: "Edit marketing campaigns"},
		{Codename: "billing.view_invoice", Description: "View invoices"},
		{Codename: "tenants.manage_tenant", Description: "Administer tenant settings"},
		{Codename: "access.manage_grant", Description: "Grant and revoke access"},
	}

	for _, def := range defs {
		if err := Register(def); err != nil {
			panic(err)
		}
	}
}
