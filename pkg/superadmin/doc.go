// Package superadmin identifies operator accounts allowed to work
// across tenants, typically combined with tenantscope.ForAllTenants.
//
// Membership is a plain configuration list of emails, deliberately kept
// out of the database so it survives tenant data issues and works
// before migrations run.
package superadmin
