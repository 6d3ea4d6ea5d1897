/*
Package store holds the live graph of one editor.

All mutations go through transactions. A transaction runs under the write lock,
so readers see the graph either before or after it and never in between. Change
notifications are buffered while the lock is held and delivered to observers
once it is released, in mutation order.

Observers must not mutate the store from inside the callback; hand the work to
another goroutine instead.
*/
package store
