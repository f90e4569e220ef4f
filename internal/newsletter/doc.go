// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package newsletter wraps the newsletter endpoints and the
// manage-subscription flow.
//
// A status answer with subscribed=false is a normal "not found" state, not
// an error.
//
// # Key Types
//
//   - Service: subscribe, verify, status and unsubscribe calls
//   - Manage: state machine behind the manage-subscription screen
//
// # Usage
//
//	svc := newsletter.NewService(client, log)
//	m := newsletter.NewManage(svc)
//	m.Check(ctx, "anna@example.it")
//	if m.State() == newsletter.StateConfirmed {
//	    m.Unsubscribe(ctx)
//	}
package newsletter
