package sftp

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

const dirConcurrency = 5

// Upload copies a local file or directory to the remote machine.
func (c *Client) Upload(ctx context.Context, localPath, remotePath string, progress ProgressCallback) error {
	info, err := os.Stat(localPath)
	if err != nil {
		return fmt.Errorf("stat local path: %w", err)
	}
	if info.IsDir() {
		return c.uploadDirectory(ctx, localPath, remotePath, progress)
	}
	if remoteStat, err := c.sftpClient.Stat(remotePath); err == nil && remoteStat.IsDir() {
		remotePath = c.JoinPath(remotePath, filepath.Base(localPath))
	}
	return c.uploadFile(ctx, localPath, remotePath, info.Mode(), progress)
}

// Download copies a remote file or directory to the local machine.
func (c *Client) Download(ctx context.Context, remotePath, localPath string, progress ProgressCallback) error {
	info, err := c.sftpClient.Stat(remotePath)
	if err != nil {
		return fmt.Errorf("stat remote path: %w", err)
	}
	if info.IsDir() {
		return c.downloadDirectory(ctx, remotePath, localPath, progress)
	}
	if stat, err := os.Stat(localPath); err == nil && stat.IsDir() {
		localPath = filepath.Join(localPath, info.Name())
	}
	return c.downloadFile(ctx, remotePath, localPath, info.Mode(), progress)
}

func (c *Client) uploadFile(ctx context.Context, localPath, remotePath string, mode os.FileMode, progress ProgressCallback) error {
	src, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := c.sftpClient.Create(remotePath)
	if err != nil {
		return err
	}
	defer dst.Close()

	if err := c.streamTransfer(ctx, src, dst, progress); err != nil {
		return fmt.Errorf("upload %s: %w", localPath, err)
	}
	c.sftpClient.Chmod(remotePath, mode)
	return nil
}

func (c *Client) downloadFile(ctx context.Context, remotePath, localPath string, mode os.FileMode, progress ProgressCallback) error {
	src, err := c.sftpClient.Open(remotePath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(localPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer dst.Close()

	if err := c.streamTransfer(ctx, src, dst, progress); err != nil {
		return fmt.Errorf("download %s: %w", remotePath, err)
	}
	return nil
}

func (c *Client) uploadDirectory(ctx context.Context, localDir, remoteDir string, progress ProgressCallback) error {
	if err := c.sftpClient.MkdirAll(remoteDir); err != nil {
		return fmt.Errorf("create remote dir %s: %w", remoteDir, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(dirConcurrency)
	err := filepath.Walk(localDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(localDir, path)
		if err != nil {
			return err
		}
		remote := c.JoinPath(remoteDir, filepath.ToSlash(rel))
		if info.IsDir() {
			// Directories are created inline so files never race
			// their parent.
			return c.sftpClient.MkdirAll(remote)
		}
		g.Go(func() error {
			return c.uploadFile(ctx, path, remote, info.Mode(), progress)
		})
		return nil
	})
	if err != nil {
		g.Wait()
		return err
	}
	return g.Wait()
}

func (c *Client) downloadDirectory(ctx context.Context, remoteDir, localDir string, progress ProgressCallback) error {
	if err := os.MkdirAll(localDir, 0755); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(dirConcurrency)
	walker := c.sftpClient.Walk(remoteDir)
	for walker.Step() {
		if err := walker.Err(); err != nil {
			g.Wait()
			return err
		}
		rel, err := filepath.Rel(remoteDir, walker.Path())
		if err != nil {
			g.Wait()
			return err
		}
		local := filepath.Join(localDir, rel)
		if walker.Stat().IsDir() {
			if err := os.MkdirAll(local, 0755); err != nil {
				g.Wait()
				return err
			}
			continue
		}
		remote := walker.Path()
		mode := walker.Stat().Mode()
		g.Go(func() error {
			return c.downloadFile(ctx, remote, local, mode, progress)
		})
	}
	return g.Wait()
}

func (c *Client) streamTransfer(ctx context.Context, r io.Reader, w io.Writer, progress ProgressCallback) error {
	buf := make([]byte, 32*1024)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
			if progress != nil {
				progress(n)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
