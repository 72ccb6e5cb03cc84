package halfsquare

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/esimov/halfsquare/utils"
	"golang.org/x/sync/errgroup"
)

// Reporter receives stage progress from the Processor.
type Reporter interface {
	Start(message string)
	Succeed()
	Fail()
	Warn(message string)
}

type nopReporter struct{}

func (nopReporter) Start(string) {}
func (nopReporter) Succeed()     {}
func (nopReporter) Fail()        {}
func (nopReporter) Warn(string)  {}

// Processor runs the half-square triangle pipeline.
// The zero value is ready to use.
type Processor struct {
	// Ops performs the raster operations. Defaults to Engine.
	Ops ImageOps
	// NewCache opens the artifact cache of a workspace directory. Defaults to NewFileCache.
	NewCache func(dir string) CacheStore
	// Fetch downloads a remote input into dir. Defaults to utils.DownloadImage.
	Fetch func(ctx context.Context, url, dir string) (string, error)
	// Reporter is notified about stage progress.
	Reporter Reporter
	// Logger defaults to the "processor" component logger.
	Logger *slog.Logger
}

// Result describes a finished run.
type Result struct {
	Output       string
	Mode         Mode
	Workspace    string
	MaskCached   bool
	BufferCached bool
	Elapsed      time.Duration
}

func (p *Processor) ops() ImageOps {
	if p.Ops == nil {
		return Engine{}
	}
	return p.Ops
}

func (p *Processor) cache(dir string) CacheStore {
	if p.NewCache == nil {
		return NewFileCache(dir)
	}
	return p.NewCache(dir)
}

func (p *Processor) reporter() Reporter {
	if p.Reporter == nil {
		return nopReporter{}
	}
	return p.Reporter
}

func (p *Processor) logger() *slog.Logger {
	if p.Logger == nil {
		return utils.Logger("processor")
	}
	return p.Logger
}

// Process composes the request inputs into a half-square triangle written to req.Output.
//
// The stages run strictly in order: mask, buffer (single input only), crop, mask
// application, composite. Crop and mask application fan out over the inputs and
// join before the next stage starts. The first failing stage aborts the run.
// Ephemeral workspaces are removed on every exit path; a failed removal is only logged.
func (p *Processor) Process(ctx context.Context, req Request) (res *Result, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	rep, log := p.reporter(), p.logger()

	ws, err := AcquireWorkspace(req.WorkDir, req.Debug)
	if err != nil {
		return nil, err
	}
	defer func() {
		// A leftover scratch directory never fails the run.
		if rerr := ws.Release(); rerr != nil {
			log.Warn("unable to remove workspace", "dir", ws.Dir, "error", rerr)
		}
	}()
	defer func() {
		if err != nil {
			rep.Fail()
			log.Debug("pipeline aborted", "error", err)
		}
	}()

	if req.Debug {
		rep.Warn("Debug enabled")
	}
	log.Debug("workspace acquired", "dir", ws.Dir, "persistent", ws.Persistent, "mode", req.Mode())

	res = &Result{Output: req.Output, Mode: req.Mode(), Workspace: ws.Dir}
	cache := p.cache(ws.Dir)

	inputs, err := p.fetchInputs(ctx, ws, req)
	if err != nil {
		return nil, err
	}

	mask, hit, err := p.EnsureMask(ctx, cache, req.Size, req.OpTimeout)
	if err != nil {
		return nil, err
	}
	res.MaskCached = hit

	var buffer string
	if req.Mode() == BufferMode {
		buffer, hit, err = p.EnsureBuffer(ctx, cache, req.Size, req.OpTimeout)
		if err != nil {
			return nil, err
		}
		res.BufferCached = hit
	}

	rep.Start("Cropping")
	crops := make([]string, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			out := ws.Scratch("crop")
			if err := p.Crop(gctx, in, out, req.Size, req.OpTimeout); err != nil {
				return err
			}
			crops[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	rep.Succeed()

	rep.Start("Masking")
	triangles := make([]string, len(crops))
	g, gctx = errgroup.WithContext(ctx)
	for i, crop := range crops {
		i, crop := i, crop
		g.Go(func() error {
			out := ws.Scratch("triangle")
			// The second input keeps the lower-right half, the complement of the mask.
			if err := p.ApplyMask(gctx, crop, mask, out, i == 1, req.OpTimeout); err != nil {
				return err
			}
			triangles[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	rep.Succeed()

	top := buffer
	if req.Mode() == DualMode {
		top = triangles[1]
	}
	rep.Start("Compositing")
	if err := p.Compose(ctx, triangles[0], top, req.Output, req.OpTimeout); err != nil {
		return nil, err
	}
	rep.Succeed()

	res.Elapsed = time.Since(start)
	log.Debug("pipeline finished", "output", req.Output, "elapsed", res.Elapsed)
	return res, nil
}

// fetchInputs downloads remote inputs into the workspace. Local paths pass through.
func (p *Processor) fetchInputs(ctx context.Context, ws *Workspace, req Request) ([]string, error) {
	fetch := p.Fetch
	if fetch == nil {
		fetch = utils.DownloadImage
	}

	inputs := append([]string(nil), req.Inputs...)
	g, gctx := errgroup.WithContext(ctx)
	for i, in := range inputs {
		if !utils.IsURL(in) {
			continue
		}
		i, in := i, in
		g.Go(func() error {
			path, err := fetch(gctx, in, ws.Dir)
			if err != nil {
				return stageErr(StageDownload, in, err)
			}
			p.logger().Debug("input downloaded", "url", in, "path", path)
			inputs[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return inputs, nil
}

// EnsureMask returns the path of the size keyed triangular mask, generating and
// caching it when the cache holds no usable copy. hit reports a cache reuse.
func (p *Processor) EnsureMask(ctx context.Context, cache CacheStore, size int, timeout time.Duration) (path string, hit bool, err error) {
	return p.ensure(ctx, cache, CacheKey{Kind: KindMask, Size: size}, StageMask, timeout, p.ops().Mask)
}

// EnsureBuffer is EnsureMask for the fully transparent stand-in triangle.
func (p *Processor) EnsureBuffer(ctx context.Context, cache CacheStore, size int, timeout time.Duration) (path string, hit bool, err error) {
	return p.ensure(ctx, cache, CacheKey{Kind: KindBuffer, Size: size}, StageBuffer, timeout, p.ops().Buffer)
}

func (p *Processor) ensure(
	ctx context.Context,
	cache CacheStore,
	key CacheKey,
	stage Stage,
	timeout time.Duration,
	generate func(size int) (image.Image, error),
) (string, bool, error) {
	rep := p.reporter()

	cached, ok, err := cache.Get(key)
	if err != nil {
		return "", false, stageErr(stage, key.String(), err)
	}
	if ok {
		rep.Start("Found " + key.Kind)
		rep.Succeed()
		p.logger().Debug("cache hit", "key", key.String(), "path", cached)
		return cached, true, nil
	}

	rep.Start("Generating " + key.Kind)
	img, err := runOp(ctx, timeout, func() (image.Image, error) {
		return generate(key.Size)
	})
	if err != nil {
		return "", false, stageErr(stage, key.String(), err)
	}
	stored, err := cache.Put(key, img)
	if err != nil {
		return "", false, stageErr(stage, key.String(), err)
	}
	rep.Succeed()
	p.logger().Debug("cache miss, artifact generated", "key", key.String(), "path", stored)
	return stored, false, nil
}

// Crop writes the size×size top-left square of the image at in to out.
func (p *Processor) Crop(ctx context.Context, in, out string, size int, timeout time.Duration) error {
	img, err := runOp(ctx, timeout, func() (image.Image, error) {
		img, err := LoadImage(in)
		if err != nil {
			return nil, err
		}
		return p.ops().Crop(img, size)
	})
	if err == nil {
		err = SaveImage(out, img)
	}
	return stageErr(StageCrop, in, err)
}

// ApplyMask writes the triangle cut out of the cropped square at in to out.
func (p *Processor) ApplyMask(ctx context.Context, in, mask, out string, invert bool, timeout time.Duration) error {
	img, err := runOp(ctx, timeout, func() (image.Image, error) {
		img, err := LoadImage(in)
		if err != nil {
			return nil, err
		}
		m, err := LoadImage(mask)
		if err != nil {
			return nil, err
		}
		return p.ops().ApplyMask(img, m, invert)
	})
	if err == nil {
		err = SaveImage(out, img)
	}
	return stageErr(StageApplyMask, in, err)
}

// Compose writes top layered over bottom to out.
func (p *Processor) Compose(ctx context.Context, bottom, top, out string, timeout time.Duration) error {
	img, err := runOp(ctx, timeout, func() (image.Image, error) {
		b, err := LoadImage(bottom)
		if err != nil {
			return nil, err
		}
		t, err := LoadImage(top)
		if err != nil {
			return nil, err
		}
		return p.ops().Compose(b, t)
	})
	if err == nil {
		err = SaveImage(out, img)
	}
	return stageErr(StageComposite, out, err)
}

// runOp runs fn, giving up once timeout elapses or ctx is done.
// A zero timeout runs fn inline. fn only computes: its result is written to disk
// by the caller once runOp returns, so an abandoned fn never touches a file.
func runOp(ctx context.Context, timeout time.Duration, fn func() (image.Image, error)) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		return fn()
	}

	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		img image.Image
		err error
	}
	done := make(chan result, 1)
	go func() {
		img, err := fn()
		done <- result{img, err}
	}()

	select {
	case r := <-done:
		return r.img, r.err
	case <-tctx.Done():
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if errors.Is(tctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		return nil, tctx.Err()
	}
}
