// Package psdrun renders layered image documents.
//
// A Document is a tree of Nodes: leaf layers carrying straight-alpha pixels
// and optional masks, and groups that either flatten into their parent
// (pass-through) or composite as an isolated unit with their own blend mode
// and opacity. Rendering walks the tree bottommost-first, applies each
// leaf's transparency and layer masks, and blends the result onto
// premultiplied surfaces.
//
// # Runtime
//
// Runtime keeps up to 15 documents resident behind integer handles:
//
//	rt := psdrun.New(container.Decoder{})
//	res, err := rt.LoadBytes(data)
//	if err != nil {
//	    return err
//	}
//	defer rt.Release(res.Handle)
//
//	img, err := rt.Render(res.Handle, nil, nil)
//
// Render returns canvas-sized RGBA8 with straight alpha. Visibility
// overrides passed to Render apply to that call only.
//
// # Logging
//
// psdrun is silent by default. SetLogger installs a *slog.Logger.
package psdrun
